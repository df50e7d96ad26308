package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
	"social-go/internal/feedtypes"
	"social-go/internal/models"
	"social-go/internal/services"
)

func TestNotifyRejectsUnknownKind(t *testing.T) {
	svc := services.NewNotificationService(newFakeNotificationRepo(), newFakeUserRepo(), nil, nil, config.KafkaConfig{}, 0)

	_, err := svc.Notify(context.Background(), 1, "poke", 2, nil, "hi")
	assert.True(t, errors.Is(err, services.ErrInvalidNotificationType))
}

func TestNotifyThenUnreadCountThenMarkAllRead(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	actor := users.add("Bob", "Kaya", "", "")
	recipient := users.add("Alice", "Ozturk", "", "")
	svc := services.NewNotificationService(newFakeNotificationRepo(), users, nil, nil, config.KafkaConfig{}, 0)

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, recipient.ID, models.NotificationTypeLike, actor.ID, nil, "liked your post")
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, svc.MarkAllRead(ctx, recipient.ID))
	count, err = svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListNotificationsResolvesActorAndCaps(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	actor := users.add("Bob", "Kaya", "", "Designer")
	recipient := users.add("Alice", "Ozturk", "", "")
	svc := services.NewNotificationService(newFakeNotificationRepo(), users, nil, nil, config.KafkaConfig{}, 0)

	for i := 0; i < 60; i++ {
		_, err := svc.Notify(ctx, recipient.ID, models.NotificationTypeLike, actor.ID, nil, fmt.Sprintf("event %d", i))
		require.NoError(t, err)
	}

	list, err := svc.ListNotifications(ctx, recipient.ID)
	require.NoError(t, err)
	// 列表封顶在最近 50 条，最新在前
	require.Len(t, list, 50)
	assert.Equal(t, "event 59", list[0].Message)
	assert.Equal(t, "event 10", list[49].Message)

	require.NotNil(t, list[0].FromUser)
	assert.Equal(t, "Bob", list[0].FromUser.FirstName)
	assert.Equal(t, "Designer", list[0].FromUser.Occupation)
}

func TestListNotificationsToleratesDeletedActor(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	actor := users.add("Bob", "Kaya", "", "")
	recipient := users.add("Alice", "Ozturk", "", "")
	svc := services.NewNotificationService(newFakeNotificationRepo(), users, nil, nil, config.KafkaConfig{}, 0)

	_, err := svc.Notify(ctx, recipient.ID, models.NotificationTypeFriend, actor.ID, nil, "added you")
	require.NoError(t, err)
	delete(users.users, actor.ID)

	list, err := svc.ListNotifications(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].FromUser)
}

func TestUnreadCountUsesCacheUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	actor := users.add("Bob", "Kaya", "", "")
	recipient := users.add("Alice", "Ozturk", "", "")
	cache := newFakeUnreadCache()
	svc := services.NewNotificationService(newFakeNotificationRepo(), users, cache, nil, config.KafkaConfig{}, time.Minute)

	_, err := svc.Notify(ctx, recipient.ID, models.NotificationTypeLike, actor.ID, nil, "x")
	require.NoError(t, err)

	// 第一次回源并写缓存
	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, cache.sets)

	// 第二次命中缓存
	_, err = svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// 新的写入使缓存失效，下一次重新回源
	_, err = svc.Notify(ctx, recipient.ID, models.NotificationTypeLike, actor.ID, nil, "y")
	require.NoError(t, err)
	count, err = svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestNotifyPublishesPushEvent(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	actor := users.add("Bob", "Kaya", "", "")
	recipient := users.add("Alice", "Ozturk", "", "")
	producer := &fakeProducer{}
	kafkaCfg := config.KafkaConfig{NotificationsTopic: "social-notifications"}
	svc := services.NewNotificationService(newFakeNotificationRepo(), users, nil, producer, kafkaCfg, 0)

	postID := uint(5)
	created, err := svc.Notify(ctx, recipient.ID, models.NotificationTypeComment, actor.ID, &postID, "commented on your post")
	require.NoError(t, err)

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "social-notifications", msg.topic)
	assert.Equal(t, fmt.Sprintf("%d", recipient.ID), string(msg.key))

	var event feedtypes.NotificationEvent
	require.NoError(t, json.Unmarshal(msg.payload, &event))
	assert.Equal(t, created.ID, event.NotificationID)
	assert.Equal(t, recipient.ID, event.RecipientID)
	assert.Equal(t, models.NotificationTypeComment, event.Type)
	require.NotNil(t, event.PostID)
	assert.Equal(t, postID, *event.PostID)
}

func TestNotifySurvivesProducerFailure(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	actor := users.add("Bob", "Kaya", "", "")
	recipient := users.add("Alice", "Ozturk", "", "")
	notifs := newFakeNotificationRepo()
	producer := &fakeProducer{sendErr: errors.New("broker down")}
	svc := services.NewNotificationService(notifs, users, nil, producer, config.KafkaConfig{}, 0)

	// 推送是 best-effort：发布失败不影响记录写入
	_, err := svc.Notify(ctx, recipient.ID, models.NotificationTypeLike, actor.ID, nil, "x")
	require.NoError(t, err)
	assert.Len(t, notifs.notifications, 1)
}
