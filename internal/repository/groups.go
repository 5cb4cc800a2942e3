package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

// MemberView 群成员及其公开资料
type MemberView struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Photo       *string   `json:"photo,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	AddedBy     *string   `json:"added_by,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.Create(g).Error, "group")
}

func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var g models.Group
	if err := db.First(&g, "id = ?", id).Error; err != nil {
		return nil, translate(ctx, err, "group")
	}
	return &g, nil
}

// LockGroup 读取群并加共享锁，事务内使用；sqlite 忽略行锁
func (s *Store) LockGroup(ctx context.Context, id string) (*models.Group, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var g models.Group
	err := db.Clauses(clause.Locking{Strength: "SHARE"}).First(&g, "id = ?", id).Error
	if err != nil {
		return nil, translate(ctx, err, "group")
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context, p Page, search string) (List[models.Group], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	q := db.Model(&models.Group{})
	if search != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(search))
	}
	out, err := paginate[models.Group](q, p, "created_at DESC, id DESC")
	return out, translate(ctx, err, "group")
}

// ListUserGroups 用户所在的群
func (s *Store) ListUserGroups(ctx context.Context, userID string, p Page) (List[models.Group], error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	q := db.Model(&models.Group{}).
		Where("id IN (?)", db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID))
	out, err := paginate[models.Group](q, p, "created_at DESC, id DESC")
	return out, translate(ctx, err, "group")
}

func (s *Store) UpdateGroup(ctx context.Context, id string, fields map[string]interface{}) (*models.Group, error) {
	if len(fields) == 0 {
		return s.GetGroup(ctx, id)
	}
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	fields["updated_at"] = time.Now()
	res := db.Model(&models.Group{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(ctx, res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("group not found")
	}
	var g models.Group
	if err := db.First(&g, "id = ?", id).Error; err != nil {
		return nil, translate(ctx, err, "group")
	}
	return &g, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("id = ?", id).Delete(&models.Group{})
	if res.Error != nil {
		return translate(ctx, res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("group not found")
	}
	return nil
}

// ---- members ----

// AddMembers 批量加入成员，已存在时返回 Conflict
func (s *Store) AddMembers(ctx context.Context, members []models.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	return translate(ctx, db.CreateInBatches(&members, 100).Error, "member")
}

func (s *Store) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	var m models.GroupMember
	if err := db.First(&m, "group_id = ? AND user_id = ?", groupID, userID).Error; err != nil {
		return nil, translate(ctx, err, "member")
	}
	return &m, nil
}

func (s *Store) RemoveMember(ctx context.Context, groupID, userID string) (bool, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if res.Error != nil {
		return false, translate(ctx, res.Error, "member")
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) SetMemberAdmin(ctx context.Context, groupID, userID string, isAdmin bool) error {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	res := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return translate(ctx, res.Error, "member")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("member not found")
	}
	return nil
}

func (s *Store) ListMembers(ctx context.Context, groupID string) ([]MemberView, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	out := make([]MemberView, 0)
	err := db.Table("group_members AS m").
		Select("u.id AS user_id, u.name, u.phone_number, u.photo, m.is_admin, m.added_by, m.created_at AS joined_at").
		Joins("JOIN users AS u ON u.id = m.user_id").
		Where("m.group_id = ?", groupID).
		Order("m.created_at ASC, m.id ASC").
		Scan(&out).Error
	return out, translate(ctx, err, "member")
}

// MemberIDs 群当前成员 ID，发送时读取，不做缓存
func (s *Store) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	ctx, db, cancel := s.scope(ctx)
	defer cancel()
	ids := make([]string, 0)
	err := db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	return ids, translate(ctx, err, "member")
}
