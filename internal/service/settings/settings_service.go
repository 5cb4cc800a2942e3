package settingsvc

import (
	"context"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
	"pigeon/internal/repository"
)

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

// Patch 全局开关的部分更新
type Patch struct {
	BroadcastEnabled   *bool `json:"broadcast_enabled"`
	GroupsEnabled      *bool `json:"groups_enabled"`
	StatusEnabled      *bool `json:"status_enabled"`
	CallsEnabled       *bool `json:"calls_enabled"`
	AttachmentsEnabled *bool `json:"attachments_enabled"`
	SignupEnabled      *bool `json:"signup_enabled"`
	MaintenanceMode    *bool `json:"maintenance_mode"`
	OTPExpiryMinutes   *int  `json:"otp_expiry_minutes"`
}

// Get 每次都从库中读取，修改即时生效
func (s *Service) Get(ctx context.Context) (*models.AppSettings, error) {
	return s.store.GetSettings(ctx)
}

func (s *Service) Update(ctx context.Context, in Patch) (*models.AppSettings, error) {
	fields := map[string]interface{}{}
	setBool := func(col string, v *bool) {
		if v != nil {
			fields[col] = *v
		}
	}
	setBool("broadcast_enabled", in.BroadcastEnabled)
	setBool("groups_enabled", in.GroupsEnabled)
	setBool("status_enabled", in.StatusEnabled)
	setBool("calls_enabled", in.CallsEnabled)
	setBool("attachments_enabled", in.AttachmentsEnabled)
	setBool("signup_enabled", in.SignupEnabled)
	setBool("maintenance_mode", in.MaintenanceMode)
	if in.OTPExpiryMinutes != nil {
		if *in.OTPExpiryMinutes < 1 || *in.OTPExpiryMinutes > 60 {
			return nil, apperr.InvalidArg("otp_expiry_minutes must be between 1 and 60")
		}
		fields["otp_expiry_minutes"] = *in.OTPExpiryMinutes
	}
	return s.store.UpdateSettings(ctx, fields)
}
