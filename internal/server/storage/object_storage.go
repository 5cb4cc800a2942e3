package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"pigeon/internal/config"
)

type ObjectInfo struct {
	Size        int64
	ETag        string
	ContentType string
}

// ObjectStorage 媒体对象存储的最小接口，MinIO 与 OSS 各有一个实现
type ObjectStorage interface {
	Provider() string
	Bucket() string

	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	StatObject(ctx context.Context, key string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
	PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Open 根据配置选择对象存储；provider 为 none 时返回 nil，媒体上传不可用
func Open(cfg *config.Config) (ObjectStorage, error) {
	switch p := cfg.Storage.ProviderOrDefault(); p {
	case "none":
		return nil, nil
	case "minio":
		return InitMinioStorage(cfg.Minio)
	case "oss":
		return InitOSSStorage(cfg.OSS)
	default:
		return nil, fmt.Errorf("unsupported object storage provider: %s", p)
	}
}
