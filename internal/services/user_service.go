package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"social-go/internal/models"
	"social-go/internal/storage"
)

var (
	ErrUserNotFound = errors.New("用户不存在")
)

// ProfileUpdate carries the editable profile fields. Nil pointers leave
// the current value unchanged.
type ProfileUpdate struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	Location     *string `json:"location,omitempty"`
	Occupation   *string `json:"occupation,omitempty"`
	PicturePath  *string `json:"picturePath,omitempty"`
	XLink        *string `json:"xLink,omitempty"`
	LinkedInLink *string `json:"linkedInLink,omitempty"`
}

// UserService defines the interface for user profile operations.
// Profile edits never touch the display-field snapshots already stored on
// posts and comments.
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserProfile retrieves a user's profile. The password hash is excluded
// from serialization by the model.
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}
	return user, nil
}

// UpdateUserProfile applies the given field updates to the user record.
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	if update.Occupation != nil {
		user.Occupation = *update.Occupation
	}
	if update.PicturePath != nil {
		user.PicturePath = *update.PicturePath
	}
	if update.XLink != nil {
		user.XLink = *update.XLink
	}
	if update.LinkedInLink != nil {
		user.LinkedInLink = *update.LinkedInLink
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户信息失败: %w", err)
	}
	return user, nil
}
