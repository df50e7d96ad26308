package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"social-go/internal/config"
	"social-go/internal/feedtypes"

	"github.com/google/uuid"
)

// LocalStorageService 实现了 feedtypes.StorageService 接口。
type LocalStorageService struct {
	basePath string // 本地存储的基础路径，例如 "./uploads"
	baseURL  string // 用于构建文件访问 URL 的基础 URL，例如 "/uploads"
}

// NewLocalStorageService 创建一个新的 LocalStorageService 实例。
// basePath 是文件存储的根目录，baseURL 是文件访问 URL 的前缀。
func NewLocalStorageService(cfg config.StorageConfig, baseURL string) (feedtypes.StorageService, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败 '%s': %w", cfg.LocalPath, err)
	}
	return &LocalStorageService{
		basePath: cfg.LocalPath,
		baseURL:  baseURL,
	}, nil
}

// UploadFile 将文件保存到本地文件系统。
// 生成的唯一文件名是返回给调用方的存储标识，创建动态时作为
// picturePath 引用，删除动态时用它做级联删除。
func (s *LocalStorageService) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*feedtypes.FileInfo, error) {
	// 保留原始扩展名；没有扩展名时尝试从 MIME 类型推断
	ext := filepath.Ext(fileName)
	if ext == "" {
		extensions, _ := mime.ExtensionsByType(mimeType)
		if len(extensions) > 0 {
			ext = extensions[0]
		}
	}
	uniqueFileName := uuid.New().String() + ext

	dstPath := filepath.Join(s.basePath, uniqueFileName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("创建目标文件失败 '%s': %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}
	if written != fileSize {
		os.Remove(dstPath)
		return nil, fmt.Errorf("文件大小不匹配: 预期 %d, 实际写入 %d", fileSize, written)
	}

	fileURL := strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(uniqueFileName)

	fileInfo := &feedtypes.FileInfo{
		URL:      fileURL,
		Path:     uniqueFileName, // 存储标识：basePath 下的文件名
		Size:     fileSize,
		MimeType: mimeType,
		FileName: fileName,
	}

	return fileInfo, nil
}

// DeleteFile 从本地文件系统删除文件。
// pathOrIdentifier 是 UploadFile 返回的存储标识。文件已不存在时视为成功。
func (s *LocalStorageService) DeleteFile(ctx context.Context, pathOrIdentifier string) error {
	// 只接受 basePath 下的文件名，拒绝路径穿越
	cleaned := filepath.Base(filepath.Clean(pathOrIdentifier))
	if cleaned == "." || cleaned == ".." || cleaned == "" {
		return fmt.Errorf("无效的文件标识: %q", pathOrIdentifier)
	}

	fullPath := filepath.Join(s.basePath, cleaned)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			log.Printf("删除文件时未找到，视为已删除: %s", fullPath)
			return nil
		}
		return fmt.Errorf("删除文件失败 '%s': %w", fullPath, err)
	}
	return nil
}
