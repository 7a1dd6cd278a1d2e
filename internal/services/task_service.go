package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	"task-marketplace.com/task-marketplace/internal/lock"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxMessageLength     = 500
	maxReviewLength      = 500
)

// Enqueuer hands a completed task to the crediting pool.
type Enqueuer interface {
	Enqueue(taskID string) bool
}

type TaskService struct {
	store  repository.Store
	locker lock.Locker
	pool   Enqueuer
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewTaskService(
	store repository.Store,
	locker lock.Locker,
	pool Enqueuer,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		store:  store,
		locker: locker,
		pool:   pool,
		logger: logger.With("component", "task_service"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Category    string
	Budget      int
	Urgency     string
	Location    model.Location
}

// OpenTaskFilter holds the raw listing filters. Empty fields match everything.
type OpenTaskFilter struct {
	Category string
	Urgency  string
	Search   string
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID string, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	if err := requireText("title", title, maxTitleLength); err != nil {
		return nil, err
	}
	if err := requireText("description", description, maxDescriptionLength); err != nil {
		return nil, err
	}
	category, ok := constants.ParseCategory(in.Category)
	if !ok {
		return nil, apperrors.Validation("unknown category %q", in.Category)
	}
	if in.Budget <= 0 {
		return nil, apperrors.Validation("budget must be a positive amount")
	}

	owner, err := s.store.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrUserNotFound)
	}

	now := s.now()
	task := &model.Task{
		ID:           s.newID(),
		OwnerID:      owner.ID,
		OwnerName:    owner.Name,
		Title:        title,
		Description:  description,
		Category:     category,
		Budget:       in.Budget,
		Urgency:      constants.ParseUrgency(in.Urgency),
		Location:     in.Location,
		Status:       constants.StatusOpen,
		Applications: []model.Application{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", storeError(err, apperrors.ErrTaskNotFound))
	}

	s.logger.Info("task created", "task_id", task.ID, "owner_id", owner.ID, "category", category)
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, apperrors.ErrTaskIDRequired
	}
	task, err := s.store.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrTaskNotFound)
	}
	return task, nil
}

// ApplyForTask records a worker's proposal. A nil proposedBudget means the task budget.
func (s *TaskService) ApplyForTask(
	ctx context.Context,
	taskID string,
	workerID string,
	message string,
	proposedBudget *int,
) (*model.Application, error) {
	message = strings.TrimSpace(message)
	if runeCount(message) > maxMessageLength {
		return nil, apperrors.Validation("message must be at most %d characters", maxMessageLength)
	}
	if proposedBudget != nil && *proposedBudget <= 0 {
		return nil, apperrors.Validation("proposed budget must be a positive amount")
	}

	var applied *model.Application

	err := s.withTaskLock(ctx, taskID, func() error {
		if _, err := s.store.FindTaskByID(ctx, taskID); err != nil {
			return storeError(err, apperrors.ErrTaskNotFound)
		}
		worker, err := s.store.FindUserByID(ctx, workerID)
		if err != nil {
			return storeError(err, apperrors.ErrUserNotFound)
		}

		_, err = s.store.UpdateTask(ctx, taskID, func(task *model.Task) error {
			if task.Status != constants.StatusOpen {
				return apperrors.InvalidState("task is %s and no longer accepts applications", task.Status)
			}
			if task.OwnerID == worker.ID {
				return apperrors.Forbidden("you cannot apply to your own task")
			}
			if task.HasApplicant(worker.ID) {
				return apperrors.Duplicate("you have already applied for this task")
			}

			budget := task.Budget
			if proposedBudget != nil {
				budget = *proposedBudget
			}

			app := model.Application{
				ID:             s.newID(),
				TaskID:         task.ID,
				WorkerID:       worker.ID,
				WorkerName:     worker.Name,
				WorkerRating:   worker.Rating,
				ProposedBudget: budget,
				Message:        message,
				Status:         constants.ApplicationPending,
				Position:       len(task.Applications),
				AppliedAt:      s.now(),
			}
			task.Applications = append(task.Applications, app)
			applied = &app
			return nil
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.Duplicate("you have already applied for this task")
		}
		return storeError(err, apperrors.ErrTaskNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("application submitted", "task_id", taskID, "application_id", applied.ID, "worker_id", workerID)
	return applied, nil
}

func (s *TaskService) AcceptApplication(ctx context.Context, taskID, applicationID, actorID string) (*model.Task, error) {
	var accepted *model.Task

	err := s.withTaskLock(ctx, taskID, func() error {
		task, err := s.store.UpdateTask(ctx, taskID, func(task *model.Task) error {
			if task.OwnerID != actorID {
				return apperrors.Forbidden("only the task owner can accept applications")
			}
			if task.Status != constants.StatusOpen {
				return apperrors.InvalidState("task is %s and cannot accept another application", task.Status)
			}
			idx := task.FindApplication(applicationID)
			if idx < 0 {
				return apperrors.ErrApplicationNotFound
			}
			if task.Applications[idx].Status != constants.ApplicationPending {
				return apperrors.InvalidState("application is %s", task.Applications[idx].Status)
			}

			for i := range task.Applications {
				if i == idx {
					task.Applications[i].Status = constants.ApplicationAccepted
					continue
				}
				task.Applications[i].Status = constants.ApplicationRejected
			}
			worker := task.Applications[idx].WorkerID
			task.Status = constants.StatusAccepted
			task.AcceptedWorker = &worker
			return nil
		})
		if err != nil {
			return storeError(err, apperrors.ErrTaskNotFound)
		}
		accepted = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("application accepted", "task_id", taskID, "application_id", applicationID, "worker_id", *accepted.AcceptedWorker)
	return accepted, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, taskID, actorID string) (*model.Task, error) {
	var completed *model.Task

	err := s.withTaskLock(ctx, taskID, func() error {
		task, err := s.store.UpdateTask(ctx, taskID, func(task *model.Task) error {
			if task.OwnerID != actorID {
				return apperrors.Forbidden("only the task owner can complete the task")
			}
			if task.Status != constants.StatusAccepted {
				return apperrors.InvalidState("task is %s, only accepted tasks can be completed", task.Status)
			}
			task.Status = constants.StatusCompleted
			return nil
		})
		if err != nil {
			return storeError(err, apperrors.ErrTaskNotFound)
		}
		completed = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !s.pool.Enqueue(completed.ID) {
		s.logger.Warn("credit queue busy, leaving task for the poller", "task_id", completed.ID)
	}

	s.logger.Info("task completed", "task_id", taskID)
	return completed, nil
}

func (s *TaskService) ListOpenTasks(ctx context.Context, f OpenTaskFilter) ([]model.Task, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return nil, err
	}
	open := constants.StatusOpen
	filter.Status = &open
	return s.listTasks(ctx, filter)
}

// ListTasks is ListOpenTasks with an optional status. An empty status lists every task.
func (s *TaskService) ListTasks(ctx context.Context, status string, f OpenTaskFilter) ([]model.Task, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) != "" {
		st, ok := constants.ParseTaskStatus(status)
		if !ok {
			return nil, apperrors.Validation("unknown status %q", status)
		}
		filter.Status = &st
	}
	return s.listTasks(ctx, filter)
}

func (s *TaskService) ListTasksByOwner(ctx context.Context, userID string) ([]model.Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.Validation("user id is required")
	}
	return s.listTasks(ctx, repository.TaskFilter{OwnerID: userID})
}

func (s *TaskService) ListAppliedTasks(ctx context.Context, workerID string) ([]model.Task, error) {
	if strings.TrimSpace(workerID) == "" {
		return nil, apperrors.Validation("worker id is required")
	}
	return s.listTasks(ctx, repository.TaskFilter{ApplicantID: workerID})
}

func (s *TaskService) listTasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func buildFilter(f OpenTaskFilter) (repository.TaskFilter, error) {
	filter := repository.TaskFilter{Search: strings.TrimSpace(f.Search)}

	if strings.TrimSpace(f.Category) != "" {
		category, ok := constants.ParseCategory(f.Category)
		if !ok {
			return filter, apperrors.Validation("unknown category %q", f.Category)
		}
		filter.Category = &category
	}
	if strings.TrimSpace(f.Urgency) != "" {
		urgency, ok := constants.LookupUrgency(f.Urgency)
		if !ok {
			return filter, apperrors.Validation("unknown urgency %q", f.Urgency)
		}
		filter.Urgency = &urgency
	}
	return filter, nil
}

// withTaskLock runs fn while holding the task's lifecycle lock.
func (s *TaskService) withTaskLock(ctx context.Context, taskID string, fn func() error) error {
	if strings.TrimSpace(taskID) == "" {
		return apperrors.ErrTaskIDRequired
	}

	release, err := s.locker.Lock(ctx, taskID)
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			s.logger.Warn("task lock wait exceeded", "task_id", taskID)
			return apperrors.ErrTaskBusy
		}
		return fmt.Errorf("lock task %s: %w", taskID, err)
	}
	defer release()

	return fn()
}

// storeError maps repository errors onto the service taxonomy. notFound names the
// entity the caller was looking up.
func storeError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Duplicate("record already exists")
	case errors.Is(err, repository.ErrOptimisticLock):
		return apperrors.ErrOptimisticLock
	default:
		return err
	}
}
