package apiserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"social-go/internal/middleware"
	"social-go/internal/services"
	"social-go/internal/storage"
)

// FriendHandler 封装了好友关系相关的 HTTP 处理器方法。
type FriendHandler struct {
	FriendService services.FriendService
}

// NewFriendHandler 创建一个新的 FriendHandler 实例。
func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{FriendService: friendService}
}

// ToggleFriend 切换当前用户与目标用户的好友关系，返回更新后的好友列表。
func (h *FriendHandler) ToggleFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	friendID, err := storage.StrToUint(mux.Vars(r)["friendID"])
	if err != nil {
		writeJSONError(w, "无效的好友 ID", http.StatusBadRequest)
		return
	}

	friends, err := h.FriendService.ToggleFriend(r.Context(), userID, friendID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// ListFriends 返回指定用户的好友列表（基础信息）。
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userID"])
	if err != nil {
		writeJSONError(w, "无效的用户 ID", http.StatusBadRequest)
		return
	}

	friends, err := h.FriendService.ListFriends(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}
