package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"social-go/internal/config"
	"social-go/internal/feedtypes"
	"social-go/internal/kafka"
	"social-go/internal/models"
	"social-go/internal/storage"
)

var (
	ErrInvalidNotificationType = errors.New("无效的通知类型")
)

// NotificationService defines the interface for notification operations.
// Notify is a synchronous insert; the Kafka publish afterwards only feeds
// the real-time push path and is best-effort. Exactly one notification is
// created per triggering event, because the feed/comment/friend services
// are the only callers.
type NotificationService interface {
	Notify(ctx context.Context, recipientID uint, kind string, actorID uint, postID *uint, message string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID uint) ([]*models.NotificationWithActor, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationService struct {
	notifRepo   storage.NotificationRepository
	userRepo    storage.UserRepository
	unreadCache feedtypes.UnreadCache
	producer    kafka.MessageProducer
	kafkaConfig config.KafkaConfig
	unreadTTL   time.Duration
}

// NewNotificationService creates a new NotificationService instance.
// unreadCache and producer may be nil, in which case counting always hits
// the store and no push events are published.
func NewNotificationService(
	notifRepo storage.NotificationRepository,
	userRepo storage.UserRepository,
	unreadCache feedtypes.UnreadCache,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	unreadTTL time.Duration,
) NotificationService {
	return &notificationService{
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		unreadCache: unreadCache,
		producer:    producer,
		kafkaConfig: kafkaCfg,
		unreadTTL:   unreadTTL,
	}
}

// Notify inserts one notification record for the recipient.
func (s *notificationService) Notify(ctx context.Context, recipientID uint, kind string, actorID uint, postID *uint, message string) (*models.Notification, error) {
	switch kind {
	case models.NotificationTypeLike, models.NotificationTypeComment, models.NotificationTypeFriend:
	default:
		return nil, ErrInvalidNotificationType
	}

	notification := &models.Notification{
		UserID:     recipientID,
		Type:       kind,
		FromUserID: actorID,
		PostID:     postID,
		Message:    message,
		Read:       false,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("创建通知失败: %w", err)
	}

	// 写入成功后使未读计数缓存失效
	s.invalidateUnread(ctx, recipientID)

	// Best-effort publish of the push copy. The record is already durable.
	s.publishEvent(ctx, notification)

	return notification, nil
}

// ListNotifications retrieves the recipient's most recent notifications
// (newest first, capped by the repository) with the actor's display fields
// resolved from the users table. Only the actor's id is stored.
func (s *notificationService) ListNotifications(ctx context.Context, userID uint) ([]*models.NotificationWithActor, error) {
	notifications, err := s.notifRepo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取通知列表失败: %w", err)
	}

	result := []*models.NotificationWithActor{}
	if len(notifications) == 0 {
		return result, nil
	}

	// Batch-resolve the actors, then join in memory.
	actorIDSet := make(map[uint]struct{}, len(notifications))
	actorIDs := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if _, seen := actorIDSet[n.FromUserID]; !seen {
			actorIDSet[n.FromUserID] = struct{}{}
			actorIDs = append(actorIDs, n.FromUserID)
		}
	}

	actors, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("获取通知触发者信息失败: %w", err)
	}
	actorByID := make(map[uint]*models.UserBasicInfo, len(actors))
	for _, a := range actors {
		actorByID[a.ID] = a
	}

	for _, n := range notifications {
		result = append(result, &models.NotificationWithActor{
			Notification: n,
			FromUser:     actorByID[n.FromUserID], // nil if the actor was deleted
		})
	}
	return result, nil
}

// UnreadCount returns the recipient's unread notification count, serving
// from the cache when possible and falling back to the store.
func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.unreadCache != nil {
		if count, found, err := s.unreadCache.Get(ctx, userID); err == nil && found {
			return count, nil
		} else if err != nil {
			log.Printf("读取未读计数缓存出错 (user %d)，回源数据库: %v", userID, err)
		}
	}

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("统计未读通知失败: %w", err)
	}

	if s.unreadCache != nil {
		if err := s.unreadCache.Set(ctx, userID, count, s.unreadTTL); err != nil {
			log.Printf("写入未读计数缓存失败 (user %d): %v", userID, err)
		}
	}
	return count, nil
}

// MarkAllRead bulk-flips read=true for the recipient's unread notifications.
func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("批量标记已读失败: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *notificationService) invalidateUnread(ctx context.Context, userID uint) {
	if s.unreadCache == nil {
		return
	}
	if err := s.unreadCache.Invalidate(ctx, userID); err != nil {
		// 缓存带 TTL，失效失败只会让计数短暂偏旧
		log.Printf("使未读计数缓存失效失败 (user %d): %v", userID, err)
	}
}

func (s *notificationService) publishEvent(ctx context.Context, n *models.Notification) {
	if s.producer == nil {
		return
	}
	event := feedtypes.NotificationEvent{
		NotificationID: n.ID,
		RecipientID:    n.UserID,
		Type:           n.Type,
		FromUserID:     n.FromUserID,
		PostID:         n.PostID,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("序列化通知事件失败 (notification %d): %v", n.ID, err)
		return
	}

	key := []byte(fmt.Sprintf("%d", n.UserID))
	if err := s.producer.SendMessage(ctx, s.kafkaConfig.NotificationsTopic, key, payload); err != nil {
		log.Printf("发布通知事件到 Kafka 失败 (notification %d): %v", n.ID, err)
	}
}
