package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"

	"pigeon/internal/config"
)

type ossStorage struct {
	client *oss.Client
	bucket string
}

func (s *ossStorage) Provider() string { return "oss" }

func (s *ossStorage) Bucket() string { return s.bucket }

func (s *ossStorage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	req := &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
		Body:   body,
	}
	if ct := strings.TrimSpace(contentType); ct != "" {
		req.ContentType = oss.Ptr(ct)
	}
	if size >= 0 {
		req.ContentLength = oss.Ptr(size)
	}
	_, err := s.client.PutObject(ctx, req)
	return err
}

func (s *ossStorage) StatObject(ctx context.Context, key string) (ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &oss.HeadObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	})
	if err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Size: out.ContentLength}
	if out.ETag != nil {
		info.ETag = strings.Trim(*out.ETag, "\"")
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	if info.Size < 0 {
		info.Size = 0
	}
	return info, nil
}

func (s *ossStorage) RemoveObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	})
	return err
}

func (s *ossStorage) PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error) {
	out, err := s.client.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	}, oss.PresignExpires(expires))
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func InitOSSStorage(cfg config.OSS) (ObjectStorage, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		return nil, errors.New("oss region is empty")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("oss bucket is empty")
	}

	keyID, keySecret := cfg.Credentials()
	ossCfg := oss.LoadDefaultConfig().
		WithRegion(region).
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, keySecret, strings.TrimSpace(cfg.SecurityToken))).
		WithDisableSSL(cfg.DisableSSL).
		WithUseCName(cfg.UseCName).
		WithUsePathStyle(cfg.UsePathStyle)

	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		ossCfg = ossCfg.WithEndpoint(ep)
	}

	client := oss.NewClient(ossCfg)

	return &ossStorage{client: client, bucket: bucket}, nil
}
