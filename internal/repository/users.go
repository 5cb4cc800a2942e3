package repository

import (
	"context"
	"time"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(u).Error, "user")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var u models.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(ctx, err, "user")
	}
	return &u, nil
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var u models.User
	if err := db.First(&u, "phone_number = ?", phone).Error; err != nil {
		return nil, translate(ctx, err, "user")
	}
	return &u, nil
}

// UserExists 仅检查存在性，不加载整行
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate(ctx, err, "user")
	}
	return n > 0, nil
}

// ListUsers 分页列出用户，search 对 name / phone_number 做大小写不敏感的部分匹配
func (s *Store) ListUsers(ctx context.Context, p Page, search string) (List[models.User], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	q := db.Model(&models.User{})
	if search != "" {
		pat := likePattern(search)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(phone_number) LIKE ? ESCAPE '\'`, pat, pat)
	}
	out, err := paginate[models.User](q, p, "created_at DESC, id DESC")
	return out, translate(ctx, err, "user")
}

// UpdateUser 只更新 fields 中给出的列，返回更新后的行；目标不存在时返回 NotFound
func (s *Store) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	if len(fields) == 0 {
		return s.GetUser(ctx, id)
	}
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	fields["updated_at"] = time.Now()
	res := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(ctx, res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("user not found")
	}
	var u models.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(ctx, err, "user")
	}
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return translate(ctx, res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
