package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"social-go/internal/feedtypes"
	"social-go/internal/models"
	"social-go/internal/storage"
)

var (
	ErrPostNotFound = errors.New("动态不存在")
	ErrNotPostOwner = errors.New("只有作者可以删除该动态")
)

// FeedService defines the interface for post and like-set operations.
//
// CreatePost returns the full feed after the write commits. 这是与客户端
// 约定的缓存一致性契约：创建动态的响应就是最新的完整列表，客户端直接
// 替换本地缓存，不做单条合并。
type FeedService interface {
	CreatePost(ctx context.Context, authorID uint, description, picturePath string) ([]models.Post, error)
	GetFeedPosts(ctx context.Context) ([]models.Post, error)
	GetUserPosts(ctx context.Context, userID uint) ([]models.Post, error)
	LikePost(ctx context.Context, postID, actingUserID uint) (*models.Post, error)
	GetUserLikedPosts(ctx context.Context, userID uint) ([]models.Post, error)
	GetUserCommentedPosts(ctx context.Context, userID uint) ([]models.Post, error)
	DeletePost(ctx context.Context, postID, actingUserID uint) error
}

type feedService struct {
	postRepo       storage.PostRepository
	userRepo       storage.UserRepository
	commentRepo    storage.CommentRepository
	storageService feedtypes.StorageService
	notifications  NotificationService
}

// NewFeedService creates a new FeedService instance.
// storageService may be nil when no media backend is configured.
func NewFeedService(
	postRepo storage.PostRepository,
	userRepo storage.UserRepository,
	commentRepo storage.CommentRepository,
	storageService feedtypes.StorageService,
	notifications NotificationService,
) FeedService {
	return &feedService{
		postRepo:       postRepo,
		userRepo:       userRepo,
		commentRepo:    commentRepo,
		storageService: storageService,
		notifications:  notifications,
	}
}

// CreatePost creates a post with the author's display fields snapshotted at
// creation time, then returns the whole feed newest-first. Later profile
// edits do not touch the snapshot.
func (s *feedService) CreatePost(ctx context.Context, authorID uint, description, picturePath string) ([]models.Post, error) {
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询作者信息失败: %w", err)
	}

	post := &models.Post{
		UserID:          author.ID,
		FirstName:       author.FirstName,
		LastName:        author.LastName,
		Location:        author.Location,
		UserPicturePath: author.PicturePath,
		PicturePath:     picturePath,
		Description:     description,
		Likes:           map[string]bool{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("创建动态失败: %w", err)
	}

	// Contract: re-read the feed after our own write commits, never return
	// a pre-write view or just the single new record.
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("创建后读取动态列表失败: %w", err)
	}
	return posts, nil
}

// GetFeedPosts retrieves every post, newest first, with no owner filter.
func (s *feedService) GetFeedPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取动态列表失败: %w", err)
	}
	return posts, nil
}

// GetUserPosts retrieves the posts authored by userID, newest first.
func (s *feedService) GetUserPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取用户动态失败: %w", err)
	}
	return posts, nil
}

// LikePost toggles actingUserID's entry in the post's like-set and returns
// the updated post. Calling twice restores the original state. A toggle
// that adds a like on someone else's post fans out one notification.
func (s *feedService) LikePost(ctx context.Context, postID, actingUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}

	liked, err := s.postRepo.ToggleLike(ctx, postID, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("切换点赞状态失败: %w", err)
	}

	if liked && actingUserID != post.UserID {
		s.fanOutLike(ctx, post, actingUserID)
	}

	// Re-read so the returned like-set reflects our own toggle and any
	// concurrent toggles that committed before the read.
	updated, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("读取更新后的动态失败: %w", err)
	}
	return updated, nil
}

// GetUserLikedPosts retrieves the posts whose like-set contains userID.
func (s *feedService) GetUserLikedPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	posts, err := s.postRepo.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取用户点赞的动态失败: %w", err)
	}
	return posts, nil
}

// GetUserCommentedPosts retrieves the posts the user has commented on.
// A user with several comments on one post contributes that post once.
func (s *feedService) GetUserCommentedPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	postIDs, err := s.commentRepo.DistinctPostIDsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取用户评论过的动态ID失败: %w", err)
	}
	posts, err := s.postRepo.ListByIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("获取用户评论过的动态失败: %w", err)
	}
	return posts, nil
}

// DeletePost removes a post after verifying the acting user is its author.
// The stored media asset is deleted best-effort first; a failure there is
// logged and does not block the record delete.
func (s *feedService) DeletePost(ctx context.Context, postID, actingUserID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("查询动态失败: %w", err)
	}

	if post.UserID != actingUserID {
		return ErrNotPostOwner
	}

	if post.PicturePath != "" && s.storageService != nil {
		if err := s.storageService.DeleteFile(ctx, post.PicturePath); err != nil {
			log.Printf("删除动态 %d 的媒体文件失败 (继续删除记录): %v", postID, err)
		}
	}

	if err := s.commentRepo.DeleteByPost(ctx, postID); err != nil {
		return fmt.Errorf("删除动态评论失败: %w", err)
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("删除动态失败: %w", err)
	}
	return nil
}

func (s *feedService) fanOutLike(ctx context.Context, post *models.Post, actingUserID uint) {
	actor, err := s.userRepo.GetBasicInfoByID(ctx, actingUserID)
	if err != nil {
		log.Printf("获取点赞者信息失败 (user %d)，跳过通知: %v", actingUserID, err)
		return
	}
	postID := post.ID
	message := fmt.Sprintf("%s %s liked your post", actor.FirstName, actor.LastName)
	if _, err := s.notifications.Notify(ctx, post.UserID, models.NotificationTypeLike, actingUserID, &postID, message); err != nil {
		log.Printf("创建点赞通知失败 (post %d): %v", post.ID, err)
	}
}
