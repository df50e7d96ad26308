package apiserver

import (
	"net/http"

	"social-go/internal/middleware"
	"social-go/internal/services"
)

// NotificationHandler 封装了通知相关的 HTTP 处理器方法。
type NotificationHandler struct {
	NotificationService services.NotificationService
}

// NewNotificationHandler 创建一个新的 NotificationHandler 实例。
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{NotificationService: notificationService}
}

// ListNotifications 返回当前用户最近的通知（含触发者信息）。
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	notifications, err := h.NotificationService.ListNotifications(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, notifications)
}

// UnreadCount 返回当前用户的未读通知数。
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	count, err := h.NotificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]int64{"unreadCount": count})
}

// MarkAllRead 将当前用户的全部通知标记为已读。
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	if err := h.NotificationService.MarkAllRead(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "通知已全部标记为已读"})
}
