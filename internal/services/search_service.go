package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"social-go/internal/models"
	"social-go/internal/storage"
)

var (
	ErrEmptyQuery = errors.New("搜索查询不能为空")
)

// SearchResult is the two-bucket result of a search. Both buckets may be
// empty; no matches is a success, not an error.
type SearchResult struct {
	Users []models.User `json:"users"`
	Posts []models.Post `json:"posts"`
}

// SearchService defines the interface for the naive substring search.
// Users match on firstName/lastName/location/occupation; posts match on
// description plus the snapshot author fields as stored on the post.
type SearchService interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

type searchService struct {
	userRepo storage.UserRepository
	postRepo storage.PostRepository
}

// NewSearchService creates a new SearchService instance.
func NewSearchService(userRepo storage.UserRepository, postRepo storage.PostRepository) SearchService {
	return &searchService{userRepo: userRepo, postRepo: postRepo}
}

// Search performs a case-insensitive substring match across both entity
// types. An empty or blank query is rejected.
func (s *searchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	users, err := s.userRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}

	posts, err := s.postRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("搜索动态失败: %w", err)
	}

	return &SearchResult{Users: users, Posts: posts}, nil
}
