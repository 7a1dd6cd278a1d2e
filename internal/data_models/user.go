package dto

import model "task-marketplace.com/task-marketplace/internal/models"

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Phone    string   `json:"phone" validate:"required,len=10,numeric"`
	Password string   `json:"password" validate:"required,min=6,max=72"`
	Role     string   `json:"role" validate:"required"`
	Skills   []string `json:"skills"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	Name   *string  `json:"name" validate:"omitempty,max=100"`
	Skills []string `json:"skills"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}
