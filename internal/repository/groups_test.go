package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

func TestGroupMembers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "+15550010000", "Owner")
	m1 := seedUser(t, s, "+15550010001", "M1")
	m2 := seedUser(t, s, "+15550010002", "M2")

	g := &models.Group{Name: "Hikers", CreatorID: owner.ID}
	require.NoError(t, s.CreateGroup(ctx, g))
	require.NoError(t, s.AddMembers(ctx, []models.GroupMember{
		{GroupID: g.ID, UserID: owner.ID, IsAdmin: true},
		{GroupID: g.ID, UserID: m1.ID, AddedBy: &owner.ID},
	}))

	err := s.AddMembers(ctx, []models.GroupMember{{GroupID: g.ID, UserID: m1.ID}})
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyExists))

	ids, err := s.MemberIDs(ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{owner.ID, m1.ID}, ids)

	err = s.SetMemberAdmin(ctx, g.ID, m2.ID, true)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	require.NoError(t, s.SetMemberAdmin(ctx, g.ID, m1.ID, true))
	mem, err := s.GetMember(ctx, g.ID, m1.ID)
	require.NoError(t, err)
	assert.True(t, mem.IsAdmin)

	views, err := s.ListMembers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Owner", views[0].Name)

	removed, err := s.RemoveMember(ctx, g.ID, m2.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	removed, err = s.RemoveMember(ctx, g.ID, m1.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	mine, err := s.ListUserGroups(ctx, owner.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "Hikers", mine.Items[0].Name)

	none, err := s.ListUserGroups(ctx, m2.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, none.TotalCount)
}

func TestAddedBySetNullOnAdderDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "+15550011000", "Owner")
	adder := seedUser(t, s, "+15550011001", "Adder")
	member := seedUser(t, s, "+15550011002", "Member")

	g := &models.Group{Name: "G", CreatorID: owner.ID}
	require.NoError(t, s.CreateGroup(ctx, g))
	require.NoError(t, s.AddMembers(ctx, []models.GroupMember{
		{GroupID: g.ID, UserID: adder.ID},
		{GroupID: g.ID, UserID: member.ID, AddedBy: &adder.ID},
	}))

	require.NoError(t, s.DeleteUser(ctx, adder.ID))

	mem, err := s.GetMember(ctx, g.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, mem.AddedBy)
}

func TestUpdateAndDeleteGroup(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "+15550012000", "Owner")
	g := &models.Group{Name: "Old", CreatorID: owner.ID}
	require.NoError(t, s.CreateGroup(ctx, g))

	updated, err := s.UpdateGroup(ctx, g.ID, map[string]interface{}{"name": "New", "only_admins_can_post": true})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.True(t, updated.OnlyAdminsCanPost)

	list, err := s.ListGroups(ctx, Page{Page: 1, Limit: 10}, "NE")
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)

	require.NoError(t, s.DeleteGroup(ctx, g.ID))
	assert.True(t, apperr.IsCode(s.DeleteGroup(ctx, g.ID), apperr.CodeNotFound))
	_, err = s.UpdateGroup(ctx, g.ID, map[string]interface{}{"name": "x"})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
