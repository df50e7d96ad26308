package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
	"social-go/internal/storage"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	svc, err := storage.NewLocalStorageService(config.StorageConfig{LocalPath: dir}, "/uploads")
	require.NoError(t, err)

	ctx := context.Background()
	content := "fake image bytes"
	info, err := svc.UploadFile(ctx, strings.NewReader(content), int64(len(content)), "photo.jpg", "image/jpeg")
	require.NoError(t, err)

	// 存储标识是生成的唯一文件名，保留原始扩展名
	assert.NotEqual(t, "photo.jpg", info.Path)
	assert.True(t, strings.HasSuffix(info.Path, ".jpg"))
	assert.Equal(t, "/uploads/"+info.Path, info.URL)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "photo.jpg", info.FileName)

	data, err := os.ReadFile(filepath.Join(dir, info.Path))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	require.NoError(t, svc.DeleteFile(ctx, info.Path))
	_, err = os.Stat(filepath.Join(dir, info.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageUploadSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	svc, err := storage.NewLocalStorageService(config.StorageConfig{LocalPath: dir}, "/uploads")
	require.NoError(t, err)

	_, err = svc.UploadFile(context.Background(), strings.NewReader("short"), 100, "photo.jpg", "image/jpeg")
	require.Error(t, err)

	// 半途而废的文件不能留在磁盘上
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorageDeleteMissingFileIsSuccess(t *testing.T) {
	dir := t.TempDir()
	svc, err := storage.NewLocalStorageService(config.StorageConfig{LocalPath: dir}, "/uploads")
	require.NoError(t, err)

	assert.NoError(t, svc.DeleteFile(context.Background(), "does-not-exist.jpg"))
}

func TestLocalStorageDeleteStripsTraversal(t *testing.T) {
	dir := t.TempDir()
	svc, err := storage.NewLocalStorageService(config.StorageConfig{LocalPath: dir}, "/uploads")
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(dir), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0644))
	defer os.Remove(outside)

	// 路径穿越被归一化到 basePath 下，外部文件不受影响
	_ = svc.DeleteFile(context.Background(), "../victim.txt")
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
