package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"social-go/internal/middleware"
	"social-go/internal/services"
	"social-go/internal/storage"
)

// PostHandler 封装了动态流相关的 HTTP 处理器方法。
type PostHandler struct {
	FeedService services.FeedService
}

// NewPostHandler 创建一个新的 PostHandler 实例。
func NewPostHandler(feedService services.FeedService) *PostHandler {
	return &PostHandler{FeedService: feedService}
}

// CreatePostRequest 是发布动态请求的结构体。
type CreatePostRequest struct {
	Description string `json:"description"`
	PicturePath string `json:"picturePath,omitempty"` // 先通过 /upload 上传，再把返回的路径填到这里
}

// CreatePost 处理发布动态请求，返回更新后的完整动态流。
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	posts, err := h.FeedService.CreatePost(r.Context(), userID, req.Description, req.PicturePath)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, posts)
}

// GetFeed 返回全站动态流，按创建时间倒序。
func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.FeedService.GetFeedPosts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

// GetUserPosts 返回指定用户发布的动态。
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userID"])
	if err != nil {
		writeJSONError(w, "无效的用户 ID", http.StatusBadRequest)
		return
	}

	posts, err := h.FeedService.GetUserPosts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

// LikePost 切换当前用户对动态的点赞状态，返回更新后的动态。
func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	postID, err := storage.StrToUint(mux.Vars(r)["postID"])
	if err != nil {
		writeJSONError(w, "无效的动态 ID", http.StatusBadRequest)
		return
	}

	post, err := h.FeedService.LikePost(r.Context(), postID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, post)
}

// GetLikedPosts 返回指定用户点赞过的动态。
func (h *PostHandler) GetLikedPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userID"])
	if err != nil {
		writeJSONError(w, "无效的用户 ID", http.StatusBadRequest)
		return
	}

	posts, err := h.FeedService.GetUserLikedPosts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

// GetCommentedPosts 返回指定用户评论过的动态（去重）。
func (h *PostHandler) GetCommentedPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userID"])
	if err != nil {
		writeJSONError(w, "无效的用户 ID", http.StatusBadRequest)
		return
	}

	posts, err := h.FeedService.GetUserCommentedPosts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, posts)
}

// DeletePost 删除当前用户自己的动态及其附带数据。
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	postID, err := storage.StrToUint(mux.Vars(r)["postID"])
	if err != nil {
		writeJSONError(w, "无效的动态 ID", http.StatusBadRequest)
		return
	}

	if err := h.FeedService.DeletePost(r.Context(), postID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "动态已删除"})
}
