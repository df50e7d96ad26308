package feedtypes

import "time"

// NotificationEvent is the payload published to Kafka after a notification
// record has been committed, and the payload the notifier pushes to the
// recipient's websocket. The database row is the source of truth; this is
// only the real-time copy.
type NotificationEvent struct {
	NotificationID uint      `json:"notificationId"`
	RecipientID    uint      `json:"recipientId"`
	Type           string    `json:"type"`
	FromUserID     uint      `json:"fromUserId"`
	PostID         *uint     `json:"postId,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}
