package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"social-go/internal/models"
	"social-go/internal/storage"
)

var (
	ErrSelfFriend = errors.New("不能添加自己为好友")
)

// FriendService defines the interface for the symmetric friend edge.
//
// The edge is stored as one canonical-order row, so "A lists B iff B
// lists A" holds by construction and both sides always change together.
type FriendService interface {
	// ToggleFriend flips the edge between userID and friendID and returns
	// userID's updated friend list.
	ToggleFriend(ctx context.Context, userID, friendID uint) ([]*models.UserBasicInfo, error)
	ListFriends(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
}

type friendService struct {
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
	notifications  NotificationService
}

// NewFriendService creates a new FriendService instance.
func NewFriendService(
	userRepo storage.UserRepository,
	friendshipRepo storage.FriendshipRepository,
	notifications NotificationService,
) FriendService {
	return &friendService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		notifications:  notifications,
	}
}

// ToggleFriend creates the edge if absent, removes it if present.
// Self-friending is rejected outright. The check-and-flip itself is
// atomic inside the repository's Toggle.
func (s *friendService) ToggleFriend(ctx context.Context, userID, friendID uint) ([]*models.UserBasicInfo, error) {
	if userID == friendID {
		return nil, ErrSelfFriend
	}

	// Both endpoints must exist before the edge can be touched.
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询好友失败: %w", err)
	}

	added, err := s.friendshipRepo.Toggle(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("切换好友关系失败: %w", err)
	}

	if added {
		s.fanOutFriend(ctx, userID, friendID)
	}

	return s.ListFriends(ctx, userID)
}

// ListFriends retrieves the basic info projection for every friend of the
// given user. A user with no friends gets an empty list; an unknown user
// gets ErrUserNotFound.
func (s *friendService) ListFriends(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取好友列表失败: %w", err)
	}
	if len(friendIDs) == 0 {
		return []*models.UserBasicInfo{}, nil
	}

	friends, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("获取好友信息失败: %w", err)
	}
	return friends, nil
}

func (s *friendService) fanOutFriend(ctx context.Context, userID, friendID uint) {
	actor, err := s.userRepo.GetBasicInfoByID(ctx, userID)
	if err != nil {
		log.Printf("获取用户信息失败 (user %d)，跳过好友通知: %v", userID, err)
		return
	}
	message := fmt.Sprintf("%s %s added you as a friend", actor.FirstName, actor.LastName)
	if _, err := s.notifications.Notify(ctx, friendID, models.NotificationTypeFriend, userID, nil, message); err != nil {
		log.Printf("创建好友通知失败 (%d -> %d): %v", userID, friendID, err)
	}
}
