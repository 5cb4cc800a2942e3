package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"pigeon/internal/models"
)

// UpsertToken 令牌已存在时改写其归属与设备（后写者胜）
func (s *Store) UpsertToken(ctx context.Context, t *models.NotificationToken) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	t.UpdatedAt = time.Now()
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_id", "updated_at"}),
	}).Create(t).Error
	if err != nil {
		return translate(ctx, err, "notification token")
	}
	var saved models.NotificationToken
	if err := db.First(&saved, "token = ?", t.Token).Error; err != nil {
		return translate(ctx, err, "notification token")
	}
	*t = saved
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, userID, token string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.NotificationToken{})
	if res.Error != nil {
		return false, translate(ctx, res.Error, "notification token")
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListTokens(ctx context.Context, userID string) ([]models.NotificationToken, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	out := make([]models.NotificationToken, 0)
	err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&out).Error
	return out, translate(ctx, err, "notification token")
}
