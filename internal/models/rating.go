package model

import "time"

// Rating is the owner's review of the accepted worker once a task is completed.
type Rating struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;uniqueIndex:idx_rating_task_giver" json:"taskId"`
	GivenBy   string    `gorm:"size:36;not null;uniqueIndex:idx_rating_task_giver" json:"givenBy"`
	GivenTo   string    `gorm:"size:36;not null;index" json:"givenTo"`
	Stars     int       `gorm:"not null" json:"stars"`
	Review    string    `gorm:"size:500" json:"review,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
