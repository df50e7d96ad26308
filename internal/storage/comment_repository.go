package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	Delete(ctx context.Context, id uint) error
	DeleteByPost(ctx context.Context, postID uint) error
	// DistinctPostIDsByAuthor returns each post id the user has commented
	// on exactly once, regardless of how many comments they left there.
	DistinctPostIDsByAuthor(ctx context.Context, userID uint) ([]uint, error)
}

// gormCommentRepository implements CommentRepository using GORM.
type gormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-based CommentRepository.
func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

// Create creates a new comment record in the database.
func (r *gormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID retrieves a comment by its ID.
func (r *gormCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves a post's comments, newest first.
func (r *gormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment record.
func (r *gormCommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// DeleteByPost removes all comments of a post. Called when a post is deleted.
func (r *gormCommentRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}

// DistinctPostIDsByAuthor returns the de-duplicated post ids of the user's comments.
func (r *gormCommentRepository) DistinctPostIDsByAuthor(ctx context.Context, userID uint) ([]uint, error) {
	var postIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("post_id", &postIDs).Error
	if err != nil {
		return nil, err
	}
	return postIDs, nil
}
