package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

// GetSettings 读取单行设置，不存在时写入默认值
func (s *Store) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var st models.AppSettings
	err := db.First(&st, "id = ?", models.AppSettingsID).Error
	if err == nil {
		return &st, nil
	}
	if !apperr.IsCode(translate(ctx, err, "settings"), apperr.CodeNotFound) {
		return nil, translate(ctx, err, "settings")
	}
	st = models.DefaultAppSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&st).Error; err != nil {
		return nil, translate(ctx, err, "settings")
	}
	if err := db.First(&st, "id = ?", models.AppSettingsID).Error; err != nil {
		return nil, translate(ctx, err, "settings")
	}
	return &st, nil
}

// UpdateSettings 部分更新设置
func (s *Store) UpdateSettings(ctx context.Context, fields map[string]interface{}) (*models.AppSettings, error) {
	if _, err := s.GetSettings(ctx); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		ctx, db, cancel := s.scope(ctx)
		defer cancel()
		fields["updated_at"] = time.Now()
		err := db.Model(&models.AppSettings{}).Where("id = ?", models.AppSettingsID).Updates(fields).Error
		if err != nil {
			return nil, translate(ctx, err, "settings")
		}
	}
	return s.GetSettings(ctx)
}
