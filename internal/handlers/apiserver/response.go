package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"social-go/internal/services"
)

// ErrorResponse 是 API 错误响应的通用结构体。
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSONResponse 是一个辅助函数，用于发送 JSON 响应。
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// 头部已发送，无法再写 http.Error，只记录日志
			log.Printf("无法编码 JSON 响应: %v", err)
		}
	}
}

// writeJSONError 是一个辅助函数，用于发送 JSON 格式的错误响应。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError 将服务层的哨兵错误映射到 HTTP 状态码。
// 未识别的错误按内部错误处理，不向客户端暴露细节。
func writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNotPostOwner),
		errors.Is(err, services.ErrNotCommentAuthor):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrSelfFriend),
		errors.Is(err, services.ErrEmptyQuery),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrInvalidNotificationType):
		status = http.StatusBadRequest
	case errors.Is(err, gorm.ErrDuplicatedKey):
		status = http.StatusConflict
	default:
		log.Printf("处理请求时发生内部错误: %v", err)
		writeJSONError(w, "服务器内部错误", http.StatusInternalServerError)
		return
	}
	writeJSONError(w, err.Error(), status)
}
