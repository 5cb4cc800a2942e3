package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pigeon/internal/config"
)

type minioStorage struct {
	client *minio.Client
	bucket string
}

func InitMinioStorage(cfg config.Minio) (ObjectStorage, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	accessKey, secretKey := cfg.Credentials()
	bucket := strings.TrimSpace(cfg.Bucket)
	if accessKey == "" || secretKey == "" || bucket == "" {
		return nil, errors.New("minio credentials or bucket is empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("check minio bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("minio bucket not found: %s", bucket)
	}

	return &minioStorage{client: client, bucket: bucket}, nil
}

func (s *minioStorage) Provider() string { return "minio" }

func (s *minioStorage) Bucket() string { return s.bucket }

func (s *minioStorage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{}
	if ct := strings.TrimSpace(contentType); ct != "" {
		opts.ContentType = ct
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, opts)
	return err
}

func (s *minioStorage) StatObject(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Size: info.Size, ETag: info.ETag, ContentType: info.ContentType}, nil
}

func (s *minioStorage) RemoveObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *minioStorage) PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
