// internal/feedtypes/storage_service_iface.go
package feedtypes

import (
	"context"
	"io"
)

// StorageService 定义了媒体文件存储操作的接口。
// 接口放在 feedtypes 中以打破 storage 和 services 之间的循环依赖。
type StorageService interface {
	// UploadFile 将读取器中的内容上传到存储系统。
	// fileName 是原始文件名，mimeType 是文件的 MIME 类型。
	// 返回文件的信息 (FileInfo)，其中 Path 是后续删除用的标识。
	UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*FileInfo, error)

	// DeleteFile 从存储系统中删除文件。
	// pathOrIdentifier 是 UploadFile 返回的 Path。删除动态时作为
	// best-effort 级联步骤调用，失败只记录日志。
	DeleteFile(ctx context.Context, pathOrIdentifier string) error
}
