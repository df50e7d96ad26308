package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"social-go/internal/middleware"
	"social-go/internal/services"
	"social-go/internal/storage"
)

// CommentHandler 封装了评论相关的 HTTP 处理器方法。
type CommentHandler struct {
	CommentService services.CommentService
}

// NewCommentHandler 创建一个新的 CommentHandler 实例。
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{CommentService: commentService}
}

// AddCommentRequest 是发表评论请求的结构体。
type AddCommentRequest struct {
	PostID uint   `json:"postId"`
	Text   string `json:"text"`
}

// AddComment 处理发表评论请求，返回该动态更新后的完整评论列表。
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	comments, err := h.CommentService.AddComment(r.Context(), userID, req.PostID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, comments)
}

// GetPostComments 返回指定动态的评论列表，按创建时间倒序。
func (h *CommentHandler) GetPostComments(w http.ResponseWriter, r *http.Request) {
	postID, err := storage.StrToUint(mux.Vars(r)["postID"])
	if err != nil {
		writeJSONError(w, "无效的动态 ID", http.StatusBadRequest)
		return
	}

	comments, err := h.CommentService.GetPostComments(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, comments)
}

// DeleteComment 删除当前用户自己的评论，返回剩余评论列表。
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	commentID, err := storage.StrToUint(mux.Vars(r)["commentID"])
	if err != nil {
		writeJSONError(w, "无效的评论 ID", http.StatusBadRequest)
		return
	}

	comments, err := h.CommentService.DeleteComment(r.Context(), commentID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, comments)
}
