package apiserver

import (
	"net/http"

	"social-go/internal/services"
)

// SearchHandler 封装了搜索相关的 HTTP 处理器方法。
type SearchHandler struct {
	SearchService services.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService services.SearchService) *SearchHandler {
	return &SearchHandler{SearchService: searchService}
}

// Search 处理关键字搜索请求，查询参数 q 为搜索词。
// 同时返回匹配的用户和动态两组结果。
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := h.SearchService.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}
