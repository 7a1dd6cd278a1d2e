package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-marketplace.com/task-marketplace/internal/auth"
	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

const (
	minPasswordLength = 6
	// bcrypt only accepts passwords up to 72 bytes.
	maxPasswordBytes  = 72
)

type UserService struct {
	store  repository.UserRepository
	tokens *auth.TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

func NewUserService(store repository.UserRepository, tokens *auth.TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger.With("component", "user_service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Name     string
	Phone    string
	Password string
	Role     string
	Skills   []string
}

// Register creates the account and returns it with a fresh access token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return nil, "", apperrors.Validation("name is required")
	}
	if !phonePattern.MatchString(phone) {
		return nil, "", apperrors.Validation("phone must be exactly 10 digits")
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, "", apperrors.Validation("password must be at most %d bytes", maxPasswordBytes)
	}
	role, ok := constants.ParseRole(in.Role)
	if !ok {
		return nil, "", apperrors.Validation("unknown role %q", in.Role)
	}
	skills, err := normalizeSkills(role, in.Skills)
	if err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		Skills:       skills,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperrors.Duplicate("phone number is already registered")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, phone, password string) (*model.User, string, error) {
	if len(password) > maxPasswordBytes {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	user, err := s.store.FindUserByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Debug("login rejected", "user_id", user.ID)
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, storeError(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile changes the name and skills only. Nil arguments leave the field as is.
func (s *UserService) UpdateProfile(ctx context.Context, id string, name *string, skills []string) (*model.User, error) {
	var trimmed string
	if name != nil {
		trimmed = strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.Validation("name is required")
		}
	}

	user, err := s.store.UpdateUser(ctx, id, func(u *model.User) error {
		if name != nil {
			u.Name = trimmed
		}
		if skills != nil {
			normalized, err := normalizeSkills(u.Role, skills)
			if err != nil {
				return err
			}
			u.Skills = normalized
		}
		u.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// normalizeSkills validates worker skills against the category set. Seekers carry none.
func normalizeSkills(role constants.Role, raw []string) ([]string, error) {
	if role != constants.RoleWorker {
		return []string{}, nil
	}

	seen := make(map[constants.Category]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, skill := range raw {
		category, ok := constants.ParseCategory(skill)
		if !ok {
			return nil, apperrors.Validation("unknown skill %q", skill)
		}
		if seen[category] {
			continue
		}
		seen[category] = true
		out = append(out, string(category))
	}
	return out, nil
}
