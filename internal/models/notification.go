package models

// Notification kinds. One record is created per triggering event.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFriend  = "friend"
)

// Notification 代表发给某个用户的一条通知。
// 记录创建后只会被批量置为已读，不做其他修改。
type Notification struct {
	BaseModel
	UserID     uint   `gorm:"not null;index" json:"userId"` // 接收者
	Type       string `gorm:"type:varchar(20);not null" json:"type"`
	FromUserID uint   `gorm:"not null" json:"fromUserId"` // 触发者
	PostID     *uint  `json:"postId,omitempty"`
	Message    string `gorm:"type:varchar(255)" json:"message"`
	Read       bool   `gorm:"default:false;index" json:"read"`
}

// TableName 指定 Notification 模型的表名。
func (Notification) TableName() string {
	return "notifications"
}

// NotificationWithActor is the API projection of a notification with the
// acting user's display fields resolved. Only the actor's id is stored.
type NotificationWithActor struct {
	Notification
	FromUser *UserBasicInfo `json:"fromUser,omitempty"`
}
