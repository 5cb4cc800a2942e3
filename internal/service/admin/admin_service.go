package adminsvc

import (
	"context"
	"net/mail"
	"strings"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/server/auth"
)

const minPasswordLen = 8

type Service struct {
	store  *repository.Store
	paging config.Chat
}

func NewService(store *repository.Store, paging config.Chat) *Service {
	return &Service{store: store, paging: paging}
}

type NewAdmin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) page(page, limit int) repository.Page {
	return repository.NewPage(page, limit, s.paging.PageSizeOrDefault(), s.paging.MaxPageSizeOrDefault())
}

func (s *Service) UserReports(ctx context.Context, page, limit int) (repository.List[models.ReportedUser], error) {
	return s.store.ListUserReports(ctx, s.page(page, limit))
}

func (s *Service) GroupReports(ctx context.Context, page, limit int) (repository.List[models.ReportedGroup], error) {
	return s.store.ListGroupReports(ctx, s.page(page, limit))
}

func (s *Service) SmsLogs(ctx context.Context, page, limit int, search string) (repository.List[models.SmsLog], error) {
	return s.store.ListSmsLogs(ctx, s.page(page, limit), strings.TrimSpace(search))
}

// CreateAdmin 用户名或邮箱重复时返回 Conflict
func (s *Service) CreateAdmin(ctx context.Context, in NewAdmin) (*models.Admin, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || len(username) > 64 {
		return nil, apperr.InvalidArg("username must be 1-64 characters")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.InvalidArg("invalid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.InvalidArg("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	a := &models.Admin{Username: username, Email: email, PasswordHash: hash}
	if err := s.store.CreateAdmin(ctx, a); err != nil {
		if apperr.IsCode(err, apperr.CodeAlreadyExists) {
			return nil, apperr.Conflict("admin username or email already exists")
		}
		return nil, err
	}
	return a, nil
}
