package repository

import (
	"context"

	"pigeon/internal/models"
)

func (s *Store) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(a).Error, "attachment")
}

func (s *Store) GetAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var a models.Attachment
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(ctx, err, "attachment")
	}
	return &a, nil
}
