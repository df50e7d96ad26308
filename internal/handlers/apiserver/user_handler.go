package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"social-go/internal/middleware"
	"social-go/internal/services"
	"social-go/internal/storage"
)

// UserHandler 封装了用户资料相关的 HTTP 处理器方法。
type UserHandler struct {
	UserService services.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// GetMe 返回当前登录用户的资料。
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateMe 更新当前登录用户的资料，未出现在请求体中的字段保持不变。
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.UserService.UpdateUserProfile(r.Context(), userID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// GetUser 返回指定用户的公开资料。
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userID"])
	if err != nil {
		writeJSONError(w, "无效的用户 ID", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}
