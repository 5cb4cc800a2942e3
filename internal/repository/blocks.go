package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"pigeon/internal/models"
)

// BlockedView 被拉黑用户及其公开资料
type BlockedView struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Photo       *string   `json:"photo,omitempty"`
	BlockedAt   time.Time `json:"blocked_at"`
}

// CreateBlock 幂等插入拉黑关系，created 表示本次是否新增
func (s *Store) CreateBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	b := models.BlockedUser{BlockerID: blockerID, BlockedID: blockedID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
		DoNothing: true,
	}).Create(&b)
	if res.Error != nil {
		return false, translate(ctx, res.Error, "block")
	}
	return res.RowsAffected > 0, nil
}

// DeleteBlock 删除拉黑关系，removed 表示关系是否存在过
func (s *Store) DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Delete(&models.BlockedUser{})
	if res.Error != nil {
		return false, translate(ctx, res.Error, "block")
	}
	return res.RowsAffected > 0, nil
}

// IsBlockedEither 任一方向存在拉黑即为 true
func (s *Store) IsBlockedEither(ctx context.Context, a, b string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var n int64
	err := db.Model(&models.BlockedUser{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&n).Error
	if err != nil {
		return false, translate(ctx, err, "block")
	}
	return n > 0, nil
}

// ListBlocked 按拉黑时间倒序返回
func (s *Store) ListBlocked(ctx context.Context, blockerID string) ([]BlockedView, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	out := make([]BlockedView, 0)
	err := db.Table("blocked_users AS b").
		Select("u.id AS user_id, u.name, u.phone_number, u.photo, b.created_at AS blocked_at").
		Joins("JOIN users AS u ON u.id = b.blocked_id").
		Where("b.blocker_id = ?", blockerID).
		Order("b.created_at DESC, b.id DESC").
		Scan(&out).Error
	return out, translate(ctx, err, "block")
}
