package notifysvc

import (
	"context"
	"strings"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
	"pigeon/internal/repository"
)

const maxTokenLen = 512

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

// Register 同一令牌再次注册时改归当前用户
func (s *Service) Register(ctx context.Context, userID, token, deviceID string) (*models.NotificationToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.InvalidArg("token is required")
	}
	if len(token) > maxTokenLen {
		return nil, apperr.InvalidArg("token is too long")
	}
	t := &models.NotificationToken{UserID: userID, Token: token, DeviceID: strings.TrimSpace(deviceID)}
	if err := s.store.UpsertToken(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Unregister(ctx context.Context, userID, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, apperr.InvalidArg("token is required")
	}
	return s.store.DeleteToken(ctx, userID, token)
}

func (s *Service) List(ctx context.Context, userID string) ([]models.NotificationToken, error) {
	return s.store.ListTokens(ctx, userID)
}
