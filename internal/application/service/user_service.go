package service

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles staff account management
type UserService struct {
	userRepo         repository.UserRepository
	loginHistoryRepo repository.LoginHistoryRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, loginHistoryRepo repository.LoginHistoryRepository) *UserService {
	return &UserService{
		userRepo:         userRepo,
		loginHistoryRepo: loginHistoryRepo,
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// UpdateUserInput represents the update user input
type UpdateUserInput struct {
	Name     *string
	Password *string
	Role     *string
	Active   *bool
}

// UpdateUser updates an existing user
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashedPassword)
	}
	if input.Role != nil {
		if *input.Role != entity.RoleAdmin && *input.Role != entity.RoleCashier {
			return nil, apperror.NewBadRequestError("Invalid role")
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser deletes a staff account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user.ID)
}

// ListUsers lists staff accounts with pagination and optional search
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(users,
		pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetLoginHistory lists login attempts for a user
func (s *UserService) GetLoginHistory(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.LoginHistory], error) {
	records, total, err := s.loginHistoryRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(records,
		pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
