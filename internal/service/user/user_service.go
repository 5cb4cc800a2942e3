package usersvc

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/models"
	"pigeon/internal/repository"
)

const (
	maxNameLen   = 100
	maxStatusLen = 255
	maxReasonLen = 2000
)

type Service struct {
	store  *repository.Store
	paging config.Chat
}

func NewService(store *repository.Store, paging config.Chat) *Service {
	return &Service{store: store, paging: paging}
}

// Update 资料的部分更新；nil 字段保持不变
// 手机号、认证、禁用与角色不在此处修改
type Update struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Photo  *string `json:"photo"`
	Status *string `json:"status"`
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) List(ctx context.Context, page, limit int, search string) (repository.List[models.User], error) {
	p := repository.NewPage(page, limit, s.paging.PageSizeOrDefault(), s.paging.MaxPageSizeOrDefault())
	return s.store.ListUsers(ctx, p, strings.TrimSpace(search))
}

func (s *Service) Update(ctx context.Context, id string, in Update) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			return nil, apperr.InvalidArg("name must be 1-100 characters")
		}
		fields["name"] = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			fields["email"] = nil
		} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return nil, apperr.InvalidArg("invalid email")
		} else {
			fields["email"] = email
		}
	}
	if in.Photo != nil {
		fields["photo"] = nullable(*in.Photo)
	}
	if in.Status != nil {
		st, err := s.store.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		if !st.StatusEnabled {
			return nil, apperr.Forbidden("status updates are disabled")
		}
		if utf8.RuneCountInString(*in.Status) > maxStatusLen {
			return nil, apperr.InvalidArg("status must be at most 255 characters")
		}
		fields["status"] = nullable(*in.Status)
	}
	return s.store.UpdateUser(ctx, id, fields)
}

// SetVerified 幂等：重复设置相同值同样成功
func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*models.User, error) {
	return s.store.UpdateUser(ctx, id, map[string]interface{}{"verified": verified})
}

func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) (*models.User, error) {
	return s.store.UpdateUser(ctx, id, map[string]interface{}{"disabled": disabled})
}

func (s *Service) SetRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.InvalidArg("role must be user or moderator")
	}
	return s.store.UpdateUser(ctx, id, map[string]interface{}{"role": role})
}

// Delete 依赖行由外键级联删除
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// Report 追加一条举报，不去重
func (s *Service) Report(ctx context.Context, reporterID, targetID, reason string) (*models.ReportedUser, error) {
	reason = strings.TrimSpace(reason)
	if reporterID == targetID {
		return nil, apperr.InvalidArg("cannot report yourself")
	}
	if reason == "" {
		return nil, apperr.InvalidArg("reason is required")
	}
	if utf8.RuneCountInString(reason) > maxReasonLen {
		return nil, apperr.InvalidArg("reason is too long")
	}
	if err := s.mustExist(ctx, targetID); err != nil {
		return nil, err
	}
	r := &models.ReportedUser{ReporterID: reporterID, TargetID: targetID, Reason: reason}
	if err := s.store.CreateUserReport(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Block 幂等；created 为 false 表示此前已拉黑
func (s *Service) Block(ctx context.Context, blockerID, targetID string) (bool, error) {
	if blockerID == targetID {
		return false, apperr.InvalidArg("cannot block yourself")
	}
	if err := s.mustExist(ctx, targetID); err != nil {
		return false, err
	}
	return s.store.CreateBlock(ctx, blockerID, targetID)
}

// Unblock 关系不存在时返回 removed=false，不视为错误
func (s *Service) Unblock(ctx context.Context, blockerID, targetID string) (bool, error) {
	if blockerID == targetID {
		return false, apperr.InvalidArg("cannot unblock yourself")
	}
	if err := s.mustExist(ctx, targetID); err != nil {
		return false, err
	}
	return s.store.DeleteBlock(ctx, blockerID, targetID)
}

func (s *Service) ListBlocked(ctx context.Context, userID string) ([]repository.BlockedView, error) {
	return s.store.ListBlocked(ctx, userID)
}

func (s *Service) mustExist(ctx context.Context, id string) error {
	ok, err := s.store.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user not found")
	}
	return nil
}

// nullable 空字符串写入 NULL
func nullable(v string) interface{} {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return v
}
