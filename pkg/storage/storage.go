package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// ObjectInfo 对象元数据
type ObjectInfo struct {
	Key         string    // 对象键，使用"/"分隔
	Size        int64     // 大小(字节)
	ContentType string    // MIME类型
	ModTime     time.Time // 最后修改时间
}

// Storage 对象存储接口
// 用于归档模型生成的计划原文，可以有不同实现(本地文件系统、MinIO等)
type Storage interface {
	// Put 按键保存对象，已存在时覆盖
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (ObjectInfo, error)

	// Get 获取对象内容，不存在时返回ErrNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete 删除对象，不存在时不报错
	Delete(ctx context.Context, key string) error

	// Exists 检查对象是否存在
	Exists(ctx context.Context, key string) (bool, error)
}

// Config 存储配置
type Config struct {
	Type  string // local 或 minio
	Local LocalConfig
	Minio MinioConfig
}

// New 根据配置创建存储实例
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.Local)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// PlanKey 生成计划原文的对象键，按年月日分目录
func PlanKey(planID string, t time.Time) string {
	return path.Join("plans",
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
		planID+".md")
}

// PutText 保存文本对象
func PutText(ctx context.Context, s Storage, key, text string) (ObjectInfo, error) {
	return s.Put(ctx, key, strings.NewReader(text), int64(len(text)), contentTypeOf(key))
}

// GetText 读取文本对象
func GetText(ctx context.Context, s Storage, key string) (string, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return string(data), nil
}

// validKey 拒绝空键和跳出根目录的键
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid object key: %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("invalid object key: %q", key)
		}
	}
	return nil
}

// contentTypeOf 根据扩展名判断MIME类型
func contentTypeOf(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
