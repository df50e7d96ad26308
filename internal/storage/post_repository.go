package storage

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// PostRepository defines the interface for post and like-set operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, userID uint) ([]models.Post, error)
	ListByIDs(ctx context.Context, postIDs []uint) ([]models.Post, error)
	ListLikedBy(ctx context.Context, userID uint) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
	// ToggleLike flips userID's entry in the post's like-set and reports
	// whether the entry exists afterwards.
	ToggleLike(ctx context.Context, postID, userID uint) (liked bool, err error)
	Search(ctx context.Context, query string) ([]models.Post, error)
}

// gormPostRepository implements PostRepository using GORM.
type gormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based PostRepository.
func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

// Create creates a new post record in the database.
func (r *gormPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Likes == nil {
		post.Likes = map[string]bool{}
	}
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID retrieves a post by ID with its like-set populated.
func (r *gormPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	if err := r.loadLikes(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListAll retrieves every post, newest first.
func (r *gormPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, r.loadLikesForSlice(ctx, posts)
}

// ListByAuthor retrieves the posts authored by userID, newest first.
func (r *gormPostRepository) ListByAuthor(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, r.loadLikesForSlice(ctx, posts)
}

// ListByIDs retrieves the posts whose id is in postIDs, newest first.
func (r *gormPostRepository) ListByIDs(ctx context.Context, postIDs []uint) ([]models.Post, error) {
	posts := []models.Post{}
	if len(postIDs) == 0 {
		return posts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", postIDs).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, r.loadLikesForSlice(ctx, posts)
}

// ListLikedBy retrieves the posts whose like-set contains userID, newest first.
func (r *gormPostRepository) ListLikedBy(ctx context.Context, userID uint) ([]models.Post, error) {
	var likes []models.PostLike
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&likes).Error; err != nil {
		return nil, err
	}
	postIDs := make([]uint, 0, len(likes))
	for _, l := range likes {
		postIDs = append(postIDs, l.PostID)
	}
	return r.ListByIDs(ctx, postIDs)
}

// Delete removes a post record and its like-set rows.
func (r *gormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// ToggleLike flips a single like-set entry inside one transaction. The
// delete targets exactly the (post_id, user_id) row, so toggles by other
// users are untouched, and the unique index makes a same-user race settle
// on one definite state instead of interleaving.
func (r *gormPostRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		liked = true
		return tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error
	})
	return liked, err
}

// Search performs a case-insensitive substring match over the description
// and the snapshot author fields. The snapshots are matched as stored, not
// joined to the current author profile.
func (r *gormPostRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	posts := []models.Post{}
	searchTerm := "%" + strings.ToLower(query) + "%"

	err := r.db.WithContext(ctx).
		Where("LOWER(description) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(location) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm).
		Order("created_at DESC").
		Find(&posts).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return posts, nil
		}
		return nil, err
	}
	return posts, r.loadLikesForSlice(ctx, posts)
}

// loadLikes populates the Likes map of each post from post_likes rows in a
// single batch query.
func (r *gormPostRepository) loadLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		p.Likes = map[string]bool{}
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	var likes []models.PostLike
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Find(&likes).Error; err != nil {
		return err
	}
	for _, l := range likes {
		if p, ok := byID[l.PostID]; ok {
			p.Likes[strconv.FormatUint(uint64(l.UserID), 10)] = true
		}
	}
	return nil
}

func (r *gormPostRepository) loadLikesForSlice(ctx context.Context, posts []models.Post) error {
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	return r.loadLikes(ctx, refs)
}
