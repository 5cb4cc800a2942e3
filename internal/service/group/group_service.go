package groupsvc

import (
	"context"
	"strings"
	"unicode/utf8"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/models"
	"pigeon/internal/repository"
)

const maxGroupName = 100

// Actor 发起操作的主体；Admin 为系统管理员，不属于任何群
type Actor struct {
	UserID string
	Admin  bool
}

type Service struct {
	store  *repository.Store
	paging config.Chat
}

func NewService(store *repository.Store, paging config.Chat) *Service {
	return &Service{store: store, paging: paging}
}

type CreateInput struct {
	Name              string   `json:"name"`
	Photo             *string  `json:"photo"`
	OnlyAdminsCanPost bool     `json:"only_admins_can_post"`
	MemberIDs         []string `json:"member_ids"`
}

type Update struct {
	Name              *string `json:"name"`
	Photo             *string `json:"photo"`
	OnlyAdminsCanPost *bool   `json:"only_admins_can_post"`
}

// Create 创建群，创建者成为群管理员，其余成员的添加者记为创建者
func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (*models.Group, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !st.GroupsEnabled {
		return nil, apperr.Forbidden("groups are disabled")
	}

	g := &models.Group{Name: name, CreatorID: creatorID, OnlyAdminsCanPost: in.OnlyAdminsCanPost}
	if in.Photo != nil && strings.TrimSpace(*in.Photo) != "" {
		photo := strings.TrimSpace(*in.Photo)
		g.Photo = &photo
	}
	members := []models.GroupMember{{UserID: creatorID, IsAdmin: true}}
	seen := map[string]bool{creatorID: true}
	for _, id := range in.MemberIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, models.GroupMember{UserID: id, AddedBy: &creatorID})
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		for _, m := range members[1:] {
			ok, err := tx.UserExists(ctx, m.UserID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.NotFound("user not found: " + m.UserID)
			}
		}
		if err := tx.CreateGroup(ctx, g); err != nil {
			return err
		}
		for i := range members {
			members[i].GroupID = g.ID
		}
		return tx.AddMembers(ctx, members)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, userID string, page, limit int) (repository.List[models.Group], error) {
	return s.store.ListUserGroups(ctx, userID, s.page(page, limit))
}

// List 管理端分页列出全部群，按名称搜索
func (s *Service) List(ctx context.Context, page, limit int, search string) (repository.List[models.Group], error) {
	return s.store.ListGroups(ctx, s.page(page, limit), strings.TrimSpace(search))
}

// ListMembers 仅群成员或系统管理员可见
func (s *Service) ListMembers(ctx context.Context, actor Actor, groupID string) ([]repository.MemberView, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if !actor.Admin {
		if _, err := s.membership(ctx, actor, groupID); err != nil {
			return nil, err
		}
	}
	return s.store.ListMembers(ctx, groupID)
}

func (s *Service) Update(ctx context.Context, actor Actor, groupID string, in Update) (*models.Group, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name, err := validName(*in.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if in.Photo != nil {
		if p := strings.TrimSpace(*in.Photo); p != "" {
			fields["photo"] = p
		} else {
			fields["photo"] = nil
		}
	}
	if in.OnlyAdminsCanPost != nil {
		fields["only_admins_can_post"] = *in.OnlyAdminsCanPost
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireGroupAdmin(ctx, actor, groupID); err != nil {
		return nil, err
	}
	return s.store.UpdateGroup(ctx, groupID, fields)
}

// Delete 仅创建者或系统管理员可删除；成员、消息与举报随之级联删除
func (s *Service) Delete(ctx context.Context, actor Actor, groupID string) error {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !actor.Admin && g.CreatorID != actor.UserID {
		return apperr.Forbidden("only the group creator can delete the group")
	}
	return s.store.DeleteGroup(ctx, groupID)
}

// SetDisabled 系统管理员禁用/启用群
func (s *Service) SetDisabled(ctx context.Context, groupID string, disabled bool) (*models.Group, error) {
	return s.store.UpdateGroup(ctx, groupID, map[string]interface{}{"disabled": disabled})
}

// AddMember 已是成员时返回 Conflict
func (s *Service) AddMember(ctx context.Context, actor Actor, groupID, userID string) (*models.GroupMember, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireGroupAdmin(ctx, actor, groupID); err != nil {
		return nil, err
	}
	ok, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	m := models.GroupMember{GroupID: groupID, UserID: userID}
	if !actor.Admin {
		m.AddedBy = &actor.UserID
	}
	if err := s.store.AddMembers(ctx, []models.GroupMember{m}); err != nil {
		if apperr.IsCode(err, apperr.CodeAlreadyExists) {
			return nil, apperr.Conflict("user is already a member")
		}
		return nil, err
	}
	return s.store.GetMember(ctx, groupID, userID)
}

// RemoveMember 群管理员可移除任何人，普通成员只能移除自己；不存在时 removed=false
func (s *Service) RemoveMember(ctx context.Context, actor Actor, groupID, userID string) (bool, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return false, err
	}
	if actor.Admin || actor.UserID != userID {
		if err := s.requireGroupAdmin(ctx, actor, groupID); err != nil {
			return false, err
		}
	}
	return s.store.RemoveMember(ctx, groupID, userID)
}

// SetAdmin 目标不是成员时返回 NotFound
func (s *Service) SetAdmin(ctx context.Context, actor Actor, groupID, userID string, isAdmin bool) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireGroupAdmin(ctx, actor, groupID); err != nil {
		return err
	}
	return s.store.SetMemberAdmin(ctx, groupID, userID, isAdmin)
}

func (s *Service) Report(ctx context.Context, reporterID, groupID, reason string) (*models.ReportedGroup, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.InvalidArg("reason is required")
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	r := &models.ReportedGroup{ReporterID: reporterID, GroupID: groupID, Reason: reason}
	if err := s.store.CreateGroupReport(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) membership(ctx context.Context, actor Actor, groupID string) (*models.GroupMember, error) {
	m, err := s.store.GetMember(ctx, groupID, actor.UserID)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, apperr.Forbidden("not a group member")
	}
	return m, err
}

func (s *Service) requireGroupAdmin(ctx context.Context, actor Actor, groupID string) error {
	if actor.Admin {
		return nil
	}
	m, err := s.membership(ctx, actor, groupID)
	if err != nil {
		return err
	}
	if !m.IsAdmin {
		return apperr.Forbidden("group admin required")
	}
	return nil
}

func (s *Service) page(page, limit int) repository.Page {
	return repository.NewPage(page, limit, s.paging.PageSizeOrDefault(), s.paging.MaxPageSizeOrDefault())
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxGroupName {
		return "", apperr.InvalidArg("group name must be 1-100 characters")
	}
	return name, nil
}
