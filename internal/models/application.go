package model

import (
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

// Application is a worker's proposal for a task. WorkerName and WorkerRating are
// snapshots of the worker at the time of applying.
type Application struct {
	ID             string                      `gorm:"primaryKey;size:36" json:"id"`
	TaskID         string                      `gorm:"size:36;not null;uniqueIndex:idx_application_task_worker" json:"taskId"`
	WorkerID       string                      `gorm:"size:36;not null;uniqueIndex:idx_application_task_worker;index" json:"workerId"`
	WorkerName     string                      `gorm:"not null" json:"workerName"`
	WorkerRating   float64                     `json:"workerRating"`
	ProposedBudget int                         `gorm:"not null" json:"proposedBudget"`
	Message        string                      `gorm:"size:500" json:"message"`
	Status         constants.ApplicationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Position       int                         `gorm:"not null" json:"-"`
	AppliedAt      time.Time                   `json:"appliedAt"`
}
