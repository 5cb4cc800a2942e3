package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

// ---- OTP ----

func (s *Store) CreateOTP(ctx context.Context, o *models.OTP) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(o).Error, "otp")
}

// InvalidateOTPs 使该号码所有未使用的验证码失效
func (s *Store) InvalidateOTPs(ctx context.Context, phone string) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	err := db.Model(&models.OTP{}).
		Where("phone_number = ? AND consumed_at IS NULL", phone).
		Update("consumed_at", time.Now()).Error
	return translate(ctx, err, "otp")
}

// LatestOTP 返回该号码最近一条未使用的验证码（不检查过期）
func (s *Store) LatestOTP(ctx context.Context, phone string) (*models.OTP, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var o models.OTP
	err := db.Where("phone_number = ? AND consumed_at IS NULL", phone).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		return nil, translate(ctx, err, "otp")
	}
	return &o, nil
}

// ConsumeOTP 条件更新，保证验证码只能被使用一次
func (s *Store) ConsumeOTP(ctx context.Context, id string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Model(&models.OTP{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", time.Now())
	if res.Error != nil {
		return false, translate(ctx, res.Error, "otp")
	}
	return res.RowsAffected == 1, nil
}

// FailOTP 记录一次错误尝试，累计达到 max 次时验证码随即失效
func (s *Store) FailOTP(ctx context.Context, id string, max int) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	err := db.Model(&models.OTP{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return translate(ctx, err, "otp")
	}
	err = db.Model(&models.OTP{}).
		Where("id = ? AND consumed_at IS NULL AND attempts >= ?", id, max).
		Update("consumed_at", time.Now()).Error
	return translate(ctx, err, "otp")
}

// PurgeOTPs 删除 before 之前已过期或已使用的验证码
func (s *Store) PurgeOTPs(ctx context.Context, before time.Time) (int64, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("expires_at < ? OR consumed_at < ?", before, before).Delete(&models.OTP{})
	return res.RowsAffected, translate(ctx, res.Error, "otp")
}

// ---- Session ----

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(sess).Error, "session")
}

// ActiveSession 返回未撤销且未过期的会话
func (s *Store) ActiveSession(ctx context.Context, token string) (*models.Session, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var sess models.Session
	err := db.Where("token = ? AND revoked_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&sess).Error
	if err != nil {
		return nil, translate(ctx, err, "session")
	}
	return &sess, nil
}

func (s *Store) RevokeSession(ctx context.Context, token string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Model(&models.Session{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", time.Now())
	if res.Error != nil {
		return false, translate(ctx, res.Error, "session")
	}
	return res.RowsAffected > 0, nil
}

// PurgeSessions 删除已过期或已撤销的会话
func (s *Store) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("expires_at < ? OR revoked_at IS NOT NULL", now).Delete(&models.Session{})
	return res.RowsAffected, translate(ctx, res.Error, "session")
}

// ---- Admin ----

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(a).Error, "admin")
}

func (s *Store) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var a models.Admin
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(ctx, err, "admin")
	}
	return &a, nil
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var a models.Admin
	if err := db.First(&a, "username = ?", username).Error; err != nil {
		return nil, translate(ctx, err, "admin")
	}
	return &a, nil
}

func (s *Store) TouchAdminLogin(ctx context.Context, id string) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Model(&models.Admin{}).Where("id = ?", id).Update("last_login_at", time.Now())
	if res.Error != nil {
		return translate(ctx, res.Error, "admin")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("admin not found")
	}
	return nil
}
