package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

const fanOutBatch = 100

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(m).Error, "message")
}

// FanOut 为每个接收者写入一行投递记录
func (s *Store) FanOut(ctx context.Context, messageID string, recipients []string) (int, error) {
	if len(recipients) == 0 {
		return 0, nil
	}
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	rows := make([]models.UserMessage, 0, len(recipients))
	for _, uid := range recipients {
		rows = append(rows, models.UserMessage{UserID: uid, MessageID: messageID})
	}
	if err := db.CreateInBatches(&rows, fanOutBatch).Error; err != nil {
		return 0, translate(ctx, err, "delivery")
	}
	return len(rows), nil
}

// MarkRead 标记调用者自己的投递记录为已读；记录不存在时返回 NotFound
func (s *Store) MarkRead(ctx context.Context, userID, messageID string) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Model(&models.UserMessage{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", time.Now()),
		})
	if res.Error != nil {
		return translate(ctx, res.Error, "message")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("message not found")
	}
	return nil
}

// visibleTo 过滤掉与 userID 存在拉黑关系（任一方向）的发送者的投递记录；解除拉黑后恢复可见
func visibleTo(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.UserMessage{}).
		Where("user_messages.user_id = ?", userID).
		Where(`NOT EXISTS (
			SELECT 1 FROM messages m JOIN blocked_users b
			  ON (b.blocker_id = ? AND b.blocked_id = m.from_id) OR (b.blocker_id = m.from_id AND b.blocked_id = ?)
			WHERE m.id = user_messages.message_id)`, userID, userID)
}

// Inbox 用户收到的消息，最新在前
func (s *Store) Inbox(ctx context.Context, userID string, p Page) (List[models.UserMessage], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	q := visibleTo(db, userID)
	out, err := paginate[models.UserMessage](q, p, "user_messages.created_at DESC, user_messages.id DESC", "Message")
	return out, translate(ctx, err, "message")
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var n int64
	err := visibleTo(db, userID).Where("user_messages.is_read = ?", false).Count(&n).Error
	return n, translate(ctx, err, "message")
}

// CountDeliveries 某条消息的投递记录数，目前只在测试中用于核对扇出结果
func (s *Store) CountDeliveries(ctx context.Context, messageID string) (int64, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var n int64
	err := db.Model(&models.UserMessage{}).Where("message_id = ?", messageID).Count(&n).Error
	return n, translate(ctx, err, "message")
}
