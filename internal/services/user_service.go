package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"gorm.io/gorm"
)

// UserService provides business logic for user directory operations.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsersInput represents parameters for listing users.
type ListUsersInput struct {
	Search   string
	Page     int
	PageSize int
}

// ListUsers returns the user directory. ADMIN only.
func (s *UserService) ListUsers(caller authz.Identity, input ListUsersInput) ([]models.User, int64, error) {
	if !authz.CanPerform(caller.Role, authz.ActionList, authz.ResourceUser) {
		return nil, 0, ErrPermissionDenied
	}

	users, total, err := s.userRepo.List(input.Search, input.Page, input.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// GetUser returns a user visible to the caller: self for everyone, anyone
// for ADMIN.
func (s *UserService) GetUser(caller authz.Identity, userID uint64) (*models.User, error) {
	if !authz.CanViewUser(caller.Role, caller.UserID, userID) {
		return nil, ErrPermissionDenied
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateUserInput represents a partial profile update. Role is immutable
// through this API.
type UpdateUserInput struct {
	Name       *string
	AvatarPath *string
}

// UpdateUser updates a user's own profile fields.
func (s *UserService) UpdateUser(caller authz.Identity, userID uint64, input UpdateUserInput) (*models.User, error) {
	if !authz.CanUpdateUser(caller.UserID, userID) {
		return nil, ErrPermissionDenied
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		user.Name = *input.Name
	}
	if input.AvatarPath != nil {
		user.AvatarPath = input.AvatarPath
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user. ADMIN only.
func (s *UserService) DeleteUser(caller authz.Identity, userID uint64) error {
	if !authz.CanPerform(caller.Role, authz.ActionDelete, authz.ResourceUser) {
		return ErrPermissionDenied
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
