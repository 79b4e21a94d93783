package services

import (
	"context"
	"fmt"

	"socialnet/internal/models"
	"socialnet/internal/storage"
)

// Search pagination bounds.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// UserService defines the interface for user profile and search operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uint, nickname, avatarURL, bio *string) (*models.User, error)
	SearchUsers(ctx context.Context, query string, currentUserID uint, limit, offset int) ([]models.User, error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserProfile returns a user's profile with credentials stripped.
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserProfile updates the mutable profile fields of an account.
// Identity fields (username, email) are immutable after signup. A nil field
// means "leave unchanged"; a pointer to "" clears the field.
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, nickname, avatarURL, bio *string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile, user %d not found: %w", userID, err)
	}

	updated := false
	if nickname != nil && user.Nickname != *nickname {
		user.Nickname = *nickname
		updated = true
	}
	if avatarURL != nil && user.AvatarURL != *avatarURL {
		user.AvatarURL = *avatarURL
		updated = true
	}
	if bio != nil && user.Bio != *bio {
		user.Bio = *bio
		updated = true
	}

	if !updated {
		user.PasswordHash = ""
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile for user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// SearchUsers performs a filtered lookup against the user store. The limit
// is clamped to sane pagination bounds before hitting the repository.
func (s *userService) SearchUsers(ctx context.Context, query string, currentUserID uint, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.SearchUsers(ctx, query, currentUserID, limit, offset)
}
