package services

import (
	"context"
	"fmt"
	"strings"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/pagination"
	"claims-dashboard/internal/pkg/password"

	"go.uber.org/zap"
)

// User service errors
var (
	ErrWeakPassword = domain.NewKindError(domain.ErrValidation, fmt.Sprintf("password must be at least %d characters", password.MinLength))
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	log      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, log *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, log: log}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List lists users by name for assignee pickers
func (s *UserService) List(ctx context.Context, q repositories.UserQuery, params *pagination.Params) ([]*models.UserResponse, *pagination.Meta, error) {
	users, total, err := s.userRepo.List(ctx, q, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w: %w", domain.ErrInternal, err)
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, pagination.GetMeta(params, total), nil
}

// Create creates a user account
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, fmt.Errorf("%w: name", domain.ErrRequiredField)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrRequiredField)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w: %w", domain.ErrInternal, err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w: %w", domain.ErrInternal, err)
	}

	s.log.Info("user created", zap.String("userId", user.ID), zap.String("role", string(role)))
	return user, nil
}
