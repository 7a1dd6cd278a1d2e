package services

import (
	"context"
	"errors"
	"strings"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

// RateWorker stores the owner's review of the worker who completed the task and
// refreshes the worker's average rating.
func (s *TaskService) RateWorker(ctx context.Context, taskID, actorID string, stars int, review string) (*model.Rating, error) {
	review = strings.TrimSpace(review)
	var rating *model.Rating

	err := s.withTaskLock(ctx, taskID, func() error {
		task, err := s.store.FindTaskByID(ctx, taskID)
		if err != nil {
			return storeError(err, apperrors.ErrTaskNotFound)
		}
		if task.OwnerID != actorID {
			return apperrors.Forbidden("only the task owner can rate the worker")
		}
		if task.Status != constants.StatusCompleted || task.AcceptedWorker == nil {
			return apperrors.InvalidState("task is %s, only completed tasks can be rated", task.Status)
		}
		if stars < 1 || stars > 5 {
			return apperrors.Validation("stars must be between 1 and 5")
		}
		if runeCount(review) > maxReviewLength {
			return apperrors.Validation("review must be at most %d characters", maxReviewLength)
		}

		_, err = s.store.FindRating(ctx, taskID, actorID)
		switch {
		case err == nil:
			return apperrors.Duplicate("task has already been rated")
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		candidate := &model.Rating{
			ID:        s.newID(),
			TaskID:    task.ID,
			GivenBy:   actorID,
			GivenTo:   *task.AcceptedWorker,
			Stars:     stars,
			Review:    review,
			CreatedAt: s.now(),
		}
		worker, err := s.store.CreateRating(ctx, candidate)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.Duplicate("task has already been rated")
			}
			return storeError(err, apperrors.ErrUserNotFound)
		}

		s.logger.Info("worker rated", "task_id", task.ID, "worker_id", worker.ID, "stars", stars, "rating", worker.Rating)
		rating = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}
