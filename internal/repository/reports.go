package repository

import (
	"context"

	"pigeon/internal/models"
)

func (s *Store) CreateUserReport(ctx context.Context, r *models.ReportedUser) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(r).Error, "report")
}

func (s *Store) CreateGroupReport(ctx context.Context, r *models.ReportedGroup) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(r).Error, "report")
}

func (s *Store) ListUserReports(ctx context.Context, p Page) (List[models.ReportedUser], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	out, err := paginate[models.ReportedUser](db.Model(&models.ReportedUser{}), p, "created_at DESC, id DESC")
	return out, translate(ctx, err, "report")
}

func (s *Store) ListGroupReports(ctx context.Context, p Page) (List[models.ReportedGroup], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	out, err := paginate[models.ReportedGroup](db.Model(&models.ReportedGroup{}), p, "created_at DESC, id DESC")
	return out, translate(ctx, err, "report")
}
