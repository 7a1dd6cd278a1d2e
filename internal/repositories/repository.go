package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"task-marketplace.com/task-marketplace/internal/constants"
	model "task-marketplace.com/task-marketplace/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
	ErrOptimisticLock = errors.New("optimistic locking conflict")
)

// TaskRepository stores tasks together with the applications they own.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	FindTaskByID(ctx context.Context, id string) (*model.Task, error)
	// ListTasks returns matching tasks newest first.
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	// UpdateTask loads the task, applies mutate and persists the result as one unit.
	// An error from mutate aborts the update and is returned unchanged.
	UpdateTask(ctx context.Context, id string, mutate func(*model.Task) error) (*model.Task, error)
	// ListUncreditedCompletions returns ids of completed tasks whose worker has not
	// been credited yet, oldest first.
	ListUncreditedCompletions(ctx context.Context, limit int) ([]string, error)
	// CreditWorker marks the task credited and increments the accepted worker's
	// completed counter. It reports false when there was nothing to credit.
	CreditWorker(ctx context.Context, taskID string) (bool, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, mutate func(*model.User) error) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type RatingRepository interface {
	// CreateRating stores the rating and recomputes the receiver's average, returning
	// the updated receiver.
	CreateRating(ctx context.Context, rating *model.Rating) (*model.User, error)
	FindRating(ctx context.Context, taskID, givenBy string) (*model.Rating, error)
}

type Store interface {
	TaskRepository
	UserRepository
	RatingRepository
}

// TaskFilter narrows a task listing. Nil and empty fields match everything.
type TaskFilter struct {
	Status      *constants.TaskStatus
	Category    *constants.Category
	Urgency     *constants.Urgency
	Search      string
	OwnerID     string
	ApplicantID string
}

func (f TaskFilter) Matches(t *model.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Urgency != nil && t.Urgency != *f.Urgency {
		return false
	}
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.ApplicantID != "" && !t.HasApplicant(f.ApplicantID) {
		return false
	}
	return f.matchesSearch(t)
}

func (f TaskFilter) matchesSearch(t *model.Task) bool {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
