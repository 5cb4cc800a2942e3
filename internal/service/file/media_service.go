package filesvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/server/storage"
)

var errTooLarge = errors.New("file too large")

// countReader 在未知长度的上传中累计字节数并限制上限
type countReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.max > 0 && c.n > c.max {
			return n, errTooLarge
		}
	}
	return n, err
}

type Service struct {
	store   *repository.Store
	objects storage.ObjectStorage
	media   config.Media
	log     *zap.Logger
}

// NewService objects 为 nil 表示未配置对象存储
func NewService(store *repository.Store, objects storage.ObjectStorage, media config.Media, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, objects: objects, media: media, log: log}
}

// Upload 待上传的文件；Size 未知时传 -1
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type URL struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// Upload 写入对象存储后登记 Attachment；登记失败时回收对象
func (s *Service) Upload(ctx context.Context, userID string, in Upload) (*models.Attachment, error) {
	if in.Body == nil {
		return nil, apperr.InvalidArg("file is required")
	}
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !st.AttachmentsEnabled {
		return nil, apperr.Forbidden("attachments are disabled")
	}
	if s.objects == nil {
		return nil, apperr.Unavailable("object storage is not configured")
	}
	max := s.media.MaxSizeOrDefault()
	if in.Size > max {
		return nil, apperr.InvalidArg(fmt.Sprintf("file exceeds %d bytes", max))
	}
	if in.Size == 0 {
		return nil, apperr.InvalidArg("file is empty")
	}

	name := filepath.Base(strings.TrimSpace(in.FileName))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	key := fmt.Sprintf("media/%s/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(name)))
	ct := strings.TrimSpace(in.ContentType)
	if ct == "" {
		ct = "application/octet-stream"
	}

	size := in.Size
	body := in.Body
	if size < 0 {
		body = &countReader{r: in.Body, max: max}
	}
	if err := s.objects.PutObject(ctx, key, body, size, ct); err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, apperr.InvalidArg(fmt.Sprintf("file exceeds %d bytes", max))
		}
		return nil, apperr.Wrap(apperr.CodeUnavailable, "upload failed", err)
	}
	if size < 0 {
		info, err := s.objects.StatObject(ctx, key)
		if err != nil {
			s.discard(key)
			return nil, apperr.Wrap(apperr.CodeUnavailable, "upload failed", err)
		}
		size = info.Size
	}

	a := &models.Attachment{
		UploaderID: userID,
		Provider:   s.objects.Provider(),
		Bucket:     s.objects.Bucket(),
		ObjectKey:  key,
		FileName:   name,
		MimeType:   ct,
		SizeBytes:  size,
	}
	if err := s.store.CreateAttachment(ctx, a); err != nil {
		s.discard(key)
		return nil, err
	}
	return a, nil
}

func (s *Service) discard(key string) {
	if err := s.objects.RemoveObject(context.Background(), key); err != nil {
		s.log.Warn("remove orphaned object", zap.String("key", key), zap.Error(err))
	}
}

// PresignedURL 生成限时下载地址
func (s *Service) PresignedURL(ctx context.Context, id string) (*URL, error) {
	a, err := s.store.GetAttachment(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.objects == nil {
		return nil, apperr.Unavailable("object storage is not configured")
	}
	ttl := s.media.PresignTTLDuration()
	u, err := s.objects.PresignGetObject(ctx, a.ObjectKey, ttl)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "could not sign url", err)
	}
	return &URL{URL: u, ExpiresIn: int64(ttl.Seconds())}, nil
}
