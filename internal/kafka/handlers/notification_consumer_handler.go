package handlers

import (
	"context"
	"encoding/json"
	"log"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"social-go/internal/feedtypes"
	"social-go/internal/websocket"
)

// NotificationConsumerHandler turns notification events from Kafka into
// hub deliveries for connected clients.
type NotificationConsumerHandler struct {
	hub *websocket.Hub
}

// NewNotificationConsumerHandler creates a new NotificationConsumerHandler.
func NewNotificationConsumerHandler(hub *websocket.Hub) *NotificationConsumerHandler {
	return &NotificationConsumerHandler{hub: hub}
}

// Handle decodes one event and hands it to the hub. A malformed payload is
// logged and committed; the durable record already exists, so redelivering
// garbage buys nothing.
func (h *NotificationConsumerHandler) Handle(ctx context.Context, kafkaMsg *confluentKafka.Message) error {
	var event feedtypes.NotificationEvent
	if err := json.Unmarshal(kafkaMsg.Value, &event); err != nil {
		log.Printf("无法反序列化通知事件: %v, 原始值: %s", err, string(kafkaMsg.Value))
		return nil // Commit offset for bad message
	}

	h.hub.DeliverNotification(&event)
	return nil
}
