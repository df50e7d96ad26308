package apiserver

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"social-go/internal/config"
	"social-go/internal/feedtypes"
)

const (
	defaultMaxMemory = 32 << 20 // multipart 表单非文件部分的内存上限
)

// UploadHandler 封装了媒体文件上传相关的 HTTP 处理器方法。
type UploadHandler struct {
	storageService feedtypes.StorageService
	cfg            config.StorageConfig
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(storageService feedtypes.StorageService, cfg config.StorageConfig) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		cfg:            cfg,
	}
}

// UploadFileHandler 处理媒体文件上传请求。
// 上传成功后返回文件信息，客户端将其中的路径填入发布动态的
// picturePath 字段。
func (h *UploadHandler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	maxUploadSize := h.cfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		if err.Error() == "http: request body too large" {
			msg := fmt.Sprintf("上传文件过大，最大允许 %d MB", maxUploadSize>>20)
			writeJSONError(w, msg, http.StatusRequestEntityTooLarge)
		} else {
			writeJSONError(w, fmt.Sprintf("解析表单失败: %v", err), http.StatusBadRequest)
		}
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			writeJSONError(w, "请求中缺少 'file' 字段", http.StatusBadRequest)
		} else {
			writeJSONError(w, fmt.Sprintf("获取文件失败: %v", err), http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	mimeType := handler.Header.Get("Content-Type")
	if !h.isAllowedType(mimeType) {
		writeJSONError(w, fmt.Sprintf("不支持的文件类型: %s", mimeType), http.StatusUnsupportedMediaType)
		return
	}
	log.Printf("收到上传文件: 名称=%s, 大小=%d, 类型=%s", handler.Filename, handler.Size, mimeType)

	// MaxBytesReader 限制的是整个请求体，这里再单独确认文件大小
	if handler.Size > maxUploadSize {
		msg := fmt.Sprintf("上传文件过大，最大允许 %d MB", maxUploadSize>>20)
		writeJSONError(w, msg, http.StatusRequestEntityTooLarge)
		return
	}

	fileInfo, err := h.storageService.UploadFile(r.Context(), file, handler.Size, handler.Filename, mimeType)
	if err != nil {
		log.Printf("存储文件失败: %v", err)
		writeJSONError(w, "存储文件失败", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, fileInfo)
}

// isAllowedType 按配置的 MIME 白名单校验文件类型。白名单项是前缀，
// "image/" 放行所有图片，"application/pdf" 只放行 PDF。白名单为空时放行所有类型。
func (h *UploadHandler) isAllowedType(mimeType string) bool {
	if len(h.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return true
		}
	}
	return false
}
