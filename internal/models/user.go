package model

import (
	"time"

	"task-marketplace.com/task-marketplace/internal/constants"
)

type User struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Phone          string         `gorm:"size:10;not null;uniqueIndex" json:"phone"`
	PasswordHash   string         `gorm:"not null" json:"-"`
	Role           constants.Role `gorm:"type:varchar(16);not null" json:"role"`
	Skills         []string       `gorm:"serializer:json" json:"skills"`
	Rating         float64        `gorm:"not null;default:0" json:"rating"`
	TasksCompleted int            `gorm:"not null;default:0" json:"tasksCompleted"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (u *User) Clone() *User {
	c := *u
	if u.Skills != nil {
		c.Skills = append([]string(nil), u.Skills...)
	}
	return &c
}
