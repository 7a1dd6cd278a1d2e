package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-marketplace.com/task-marketplace/internal/constants"
	model "task-marketplace.com/task-marketplace/internal/models"
)

// GormStore is the SQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func applicationsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (s *GormStore) CreateTask(ctx context.Context, task *model.Task) error {
	if task.Version == 0 {
		task.Version = 1
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) FindTaskByID(ctx context.Context, id string) (*model.Task, error) {
	return findTask(s.db.WithContext(ctx), id)
}

func findTask(db *gorm.DB, id string) (*model.Task, error) {
	var task model.Task
	err := db.Preload("Applications", applicationsInOrder).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	if task.Applications == nil {
		task.Applications = []model.Application{}
	}
	return &task, nil
}

func (s *GormStore) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&model.Task{}).Preload("Applications", applicationsInOrder)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Urgency != nil {
		query = query.Where("urgency = ?", *filter.Urgency)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.ApplicantID != "" {
		applied := db.Model(&model.Application{}).Select("task_id").Where("worker_id = ?", filter.ApplicantID)
		query = query.Where("id IN (?)", applied)
	}

	var tasks []model.Task
	if err := query.Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}

	// Search runs in Go so case folding is identical across databases.
	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		if !filter.matchesSearch(&tasks[i]) {
			continue
		}
		if tasks[i].Applications == nil {
			tasks[i].Applications = []model.Application{}
		}
		out = append(out, tasks[i])
	}
	return out, nil
}

func (s *GormStore) UpdateTask(ctx context.Context, id string, mutate func(*model.Task) error) (*model.Task, error) {
	var updated *model.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findTask(tx, id)
		if err != nil {
			return err
		}

		known := make(map[string]constants.ApplicationStatus, len(task.Applications))
		for _, app := range task.Applications {
			known[app.ID] = app.Status
		}
		version := task.Version

		if err := mutate(task); err != nil {
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&model.Task{}).
			Where("id = ? AND version = ?", task.ID, version).
			Updates(map[string]interface{}{
				"title":           task.Title,
				"description":     task.Description,
				"category":        task.Category,
				"budget":          task.Budget,
				"urgency":         task.Urgency,
				"status":          task.Status,
				"accepted_worker": task.AcceptedWorker,
				"version":         gorm.Expr("version + 1"),
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOptimisticLock
		}

		for i := range task.Applications {
			app := &task.Applications[i]
			prev, ok := known[app.ID]
			if !ok {
				app.TaskID = task.ID
				if err := tx.Create(app).Error; err != nil {
					return translate(err)
				}
				continue
			}
			if prev != app.Status {
				if err := tx.Model(&model.Application{}).Where("id = ?", app.ID).Update("status", app.Status).Error; err != nil {
					return err
				}
			}
		}

		task.Version = version + 1
		task.UpdatedAt = now
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *GormStore) ListUncreditedCompletions(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	var ids []string
	err := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("status = ? AND worker_credited = ? AND accepted_worker IS NOT NULL", constants.StatusCompleted, false).
		Order("updated_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GormStore) CreditWorker(ctx context.Context, taskID string) (bool, error) {
	credited := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Select("id", "status", "accepted_worker", "worker_credited").First(&task, "id = ?", taskID).Error; err != nil {
			return translate(err)
		}
		if task.Status != constants.StatusCompleted || task.WorkerCredited || task.AcceptedWorker == nil {
			return nil
		}

		res := tx.Model(&model.Task{}).
			Where("id = ? AND worker_credited = ?", taskID, false).
			UpdateColumn("worker_credited", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		err := tx.Model(&model.User{}).
			Where("id = ?", *task.AcceptedWorker).
			UpdateColumn("tasks_completed", gorm.Expr("tasks_completed + 1")).Error
		if err != nil {
			return err
		}

		credited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
