package repository

import (
	"context"

	"pigeon/internal/models"
)

func (s *Store) CreateSmsLog(ctx context.Context, l *models.SmsLog) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(l).Error, "sms log")
}

func (s *Store) ListSmsLogs(ctx context.Context, p Page, search string) (List[models.SmsLog], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	q := db.Model(&models.SmsLog{})
	if search != "" {
		q = q.Where(`LOWER(phone_number) LIKE ? ESCAPE '\'`, likePattern(search))
	}
	out, err := paginate[models.SmsLog](q, p, "created_at DESC, id DESC")
	return out, translate(ctx, err, "sms log")
}
