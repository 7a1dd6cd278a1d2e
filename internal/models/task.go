package model

import (
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

type Location struct {
	Address string  `gorm:"size:255" json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Task is a unit of requested work. OwnerName is a snapshot taken at creation time.
type Task struct {
	ID             string               `gorm:"primaryKey;size:36" json:"id"`
	OwnerID        string               `gorm:"size:36;not null;index" json:"ownerId"`
	OwnerName      string               `gorm:"not null" json:"ownerName"`
	Title          string               `gorm:"size:200;not null" json:"title"`
	Description    string               `gorm:"size:1000;not null" json:"description"`
	Category       constants.Category   `gorm:"type:varchar(32);not null;index" json:"category"`
	Budget         int                  `gorm:"not null" json:"budget"`
	Urgency        constants.Urgency    `gorm:"type:varchar(16);not null" json:"urgency"`
	Location       Location             `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Status         constants.TaskStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AcceptedWorker *string              `gorm:"size:36;index" json:"acceptedWorker"`
	Applications   []Application        `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"applications"`
	WorkerCredited bool                 `gorm:"not null;default:false" json:"-"`
	Version        uint                 `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time            `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// FindApplication returns the index of the application with the given id, or -1.
func (t *Task) FindApplication(applicationID string) int {
	for i := range t.Applications {
		if t.Applications[i].ID == applicationID {
			return i
		}
	}
	return -1
}

func (t *Task) HasApplicant(workerID string) bool {
	for i := range t.Applications {
		if t.Applications[i].WorkerID == workerID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores can hand tasks out without sharing state.
func (t *Task) Clone() *Task {
	c := *t
	if t.AcceptedWorker != nil {
		w := *t.AcceptedWorker
		c.AcceptedWorker = &w
	}
	c.Applications = make([]Application, len(t.Applications))
	copy(c.Applications, t.Applications)
	return &c
}
