package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// safeUserFields are the columns exposed in user projections. The password
// hash column is never part of any read issued by this package's search or
// basic-info queries.
var safeUserFields = []string{"id", "first_name", "last_name", "email", "location", "occupation", "picture_path", "x_link", "linked_in_link", "created_at", "updated_at"}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string) ([]models.User, error)
	GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error)
	GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err // Handles gorm.ErrRecordNotFound as well
	}
	return &user, nil
}

// Update updates an existing user record in the database.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// Search performs a case-insensitive substring match over firstName,
// lastName, location and occupation. The selected columns exclude the
// password hash, so the projection can never leak it.
func (r *gormUserRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	searchTerm := "%" + strings.ToLower(query) + "%"

	err := r.db.WithContext(ctx).
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(occupation) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm).
		Select(safeUserFields).
		Find(&users).Error

	if err != nil {
		// 对于搜索功能，返回空的用户列表是正常行为
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users, nil
		}
		return nil, err
	}
	return users, nil
}

// GetBasicInfoByID retrieves minimal public user info by ID.
func (r *gormUserRepository) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	var basicInfo models.UserBasicInfo
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "first_name", "last_name", "picture_path", "occupation").
		Where("id = ?", id).
		First(&basicInfo).Error
	if err != nil {
		return nil, err
	}
	return &basicInfo, nil
}

// GetMultipleBasicInfoByIDs retrieves minimal public user info for a list of user IDs.
func (r *gormUserRepository) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	basicInfos := []*models.UserBasicInfo{}
	if len(userIDs) == 0 {
		return basicInfos, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "first_name", "last_name", "picture_path", "occupation").
		Where("id IN ?", userIDs).
		Find(&basicInfos).Error

	if err != nil {
		// Don't return ErrRecordNotFound for batch fetches, just return potentially empty slice
		return nil, err
	}
	return basicInfos, nil
}
