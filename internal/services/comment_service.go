package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"social-go/internal/models"
	"social-go/internal/storage"
)

var (
	ErrCommentNotFound  = errors.New("评论不存在")
	ErrNotCommentAuthor = errors.New("只有评论作者可以删除该评论")
	ErrEmptyComment     = errors.New("评论内容不能为空")
)

// CommentService defines the interface for comment operations.
//
// AddComment 和 DeleteComment 都在写入提交后重新读取该动态的完整评论列表
// 并返回，与 FeedService.CreatePost 相同的客户端缓存契约。
type CommentService interface {
	AddComment(ctx context.Context, authorID, postID uint, text string) ([]models.Comment, error)
	GetPostComments(ctx context.Context, postID uint) ([]models.Comment, error)
	DeleteComment(ctx context.Context, commentID, actingUserID uint) ([]models.Comment, error)
}

type commentService struct {
	commentRepo   storage.CommentRepository
	postRepo      storage.PostRepository
	userRepo      storage.UserRepository
	notifications NotificationService
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(
	commentRepo storage.CommentRepository,
	postRepo storage.PostRepository,
	userRepo storage.UserRepository,
	notifications NotificationService,
) CommentService {
	return &commentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// AddComment creates a comment with the author's display fields
// snapshotted at write time, then returns the post's comments newest-first.
// Fans out one notification to the post author unless they commented on
// their own post.
func (s *commentService) AddComment(ctx context.Context, authorID, postID uint, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询评论作者失败: %w", err)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}

	comment := &models.Comment{
		PostID:          postID,
		UserID:          author.ID,
		FirstName:       author.FirstName,
		LastName:        author.LastName,
		UserPicturePath: author.PicturePath,
		Comment:         text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}

	if author.ID != post.UserID {
		s.fanOutComment(ctx, post, author)
	}

	// List-after-write: the returned sequence includes our own comment.
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("创建后读取评论列表失败: %w", err)
	}
	return comments, nil
}

// GetPostComments retrieves a post's comments, newest first.
func (s *commentService) GetPostComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("获取评论列表失败: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment after verifying the acting user wrote
// it, then returns the post's remaining comments newest-first.
func (s *commentService) DeleteComment(ctx context.Context, commentID, actingUserID uint) ([]models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}

	if comment.UserID != actingUserID {
		return nil, ErrNotCommentAuthor
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return nil, fmt.Errorf("删除评论失败: %w", err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, comment.PostID)
	if err != nil {
		return nil, fmt.Errorf("删除后读取评论列表失败: %w", err)
	}
	return comments, nil
}

func (s *commentService) fanOutComment(ctx context.Context, post *models.Post, author *models.User) {
	postID := post.ID
	message := fmt.Sprintf("%s %s commented on your post", author.FirstName, author.LastName)
	if _, err := s.notifications.Notify(ctx, post.UserID, models.NotificationTypeComment, author.ID, &postID, message); err != nil {
		log.Printf("创建评论通知失败 (post %d): %v", post.ID, err)
	}
}
