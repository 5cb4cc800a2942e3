package messagesvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/testutil"
)

type fixture struct {
	svc   *Service
	store *repository.Store
	db    *gorm.DB
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.New(db, time.Second)
	return fixture{svc: NewService(store, config.Chat{}, nil), store: store, db: db}
}

func (f fixture) user(t *testing.T, phone string) *models.User {
	t.Helper()
	u := &models.User{PhoneNumber: phone, Name: phone}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f fixture) group(t *testing.T, creator *models.User, onlyAdmins bool, members ...*models.User) *models.Group {
	t.Helper()
	ctx := context.Background()
	g := &models.Group{Name: "g", CreatorID: creator.ID, OnlyAdminsCanPost: onlyAdmins}
	require.NoError(t, f.store.CreateGroup(ctx, g))
	rows := []models.GroupMember{{GroupID: g.ID, UserID: creator.ID, IsAdmin: true}}
	for _, m := range members {
		rows = append(rows, models.GroupMember{GroupID: g.ID, UserID: m.ID, AddedBy: &creator.ID})
	}
	require.NoError(t, f.store.AddMembers(ctx, rows))
	return g
}

func text(to, group *string, content string) SendInput {
	return SendInput{ToID: to, GroupID: group, Content: content, Type: models.MessageTypeText}
}

func TestTargetExclusivity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "+15552000000")
	b := f.user(t, "+15552000001")
	g := f.group(t, a, false, b)

	_, err := f.svc.Send(ctx, a.ID, text(nil, nil, "hi"))
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
	_, err = f.svc.Send(ctx, a.ID, text(&b.ID, &g.ID, "hi"))
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
	blank := "  "
	_, err = f.svc.Send(ctx, a.ID, text(&blank, nil, "hi"))
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "+15552000010")
	b := f.user(t, "+15552000011")

	cases := map[string]SendInput{
		"self":           text(&a.ID, nil, "hi"),
		"empty text":     text(&b.ID, nil, "   "),
		"image no url":   {ToID: &b.ID, Type: models.MessageTypeImage},
		"system by user": {ToID: &b.ID, Content: "x", Type: models.MessageTypeSystem},
		"unknown type":   {ToID: &b.ID, Content: "x", Type: 42},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Send(ctx, a.ID, in)
			assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestDirectMessageFanOut(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "+15552000020")
	b := f.user(t, "+15552000021")

	sent, err := f.svc.Send(ctx, a.ID, text(&b.ID, nil, "hello"))
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Recipients)
	n, err := f.store.CountDeliveries(ctx, sent.Message.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	img, err := f.svc.Send(ctx, a.ID, SendInput{ToID: &b.ID, Type: models.MessageTypeImage, Metadata: map[string]interface{}{"url": "https://cdn/x.png"}})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", img.Message.Metadata["url"])

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = f.svc.Send(ctx, a.ID, text(&missing, nil, "hello"))
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestBlockingSuppressesBothDirections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "+15552000030")
	b := f.user(t, "+15552000031")
	_, err := f.store.CreateBlock(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, a.ID, text(&b.ID, nil, "hi"))
	assert.True(t, apperr.IsCode(err, apperr.CodePermissionDenied))
	_, err = f.svc.Send(ctx, b.ID, text(&a.ID, nil, "hi"))
	assert.True(t, apperr.IsCode(err, apperr.CodePermissionDenied))

	inbox, err := f.svc.Inbox(ctx, a.ID, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, inbox.TotalCount)
}

func TestGroupFanOutExcludesSender(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "+15552000040")
	m1 := f.user(t, "+15552000041")
	m2 := f.user(t, "+15552000042")
	m3 := f.user(t, "+15552000043")
	g := f.group(t, owner, false, m1, m2, m3)

	sent, err := f.svc.Send(ctx, m1.ID, text(nil, &g.ID, "hey all"))
	require.NoError(t, err)
	assert.Equal(t, 3, sent.Recipients)
	n, err := f.store.CountDeliveries(ctx, sent.Message.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// 发送后加入的成员收不到之前的消息
	late := f.user(t, "+15552000044")
	require.NoError(t, f.store.AddMembers(ctx, []models.GroupMember{{GroupID: g.ID, UserID: late.ID}}))
	inbox, err := f.svc.Inbox(ctx, late.ID, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, inbox.TotalCount)

	for _, u := range []*models.User{owner, m2, m3} {
		unread, err := f.svc.UnreadCount(ctx, u.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, unread)
	}
	unread, err := f.svc.UnreadCount(ctx, m1.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

// 投递记录写入失败时，消息本身也不能留下
func TestSendRollsBackWhenFanOutFails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "+15552000050")
	m1 := f.user(t, "+15552000051")
	m2 := f.user(t, "+15552000052")
	g := f.group(t, owner, false, m1, m2)

	require.NoError(t, f.db.Migrator().DropTable(&models.UserMessage{}))

	sent, err := f.svc.Send(ctx, owner.ID, text(nil, &g.ID, "lost"))
	require.Error(t, err)
	assert.Nil(t, sent)
	assert.True(t, apperr.IsCode(err, apperr.CodeStorageFailure))

	var n int64
	require.NoError(t, f.db.Model(&models.Message{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestGroupPostingRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "+15552000050")
	member := f.user(t, "+15552000051")
	outsider := f.user(t, "+15552000052")
	g := f.group(t, owner, true, member)

	_, err := f.svc.Send(ctx, member.ID, text(nil, &g.ID, "can I post?"))
	assert.True(t, apperr.IsCode(err, apperr.CodePermissionDenied))

	_, err = f.svc.Send(ctx, outsider.ID, text(nil, &g.ID, "hi"))
	assert.True(t, apperr.IsCode(err, apperr.CodePermissionDenied))

	sent, err := f.svc.Send(ctx, owner.ID, text(nil, &g.ID, "announcement"))
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Recipients)

	_, err = f.store.UpdateGroup(ctx, g.ID, map[string]interface{}{"disabled": true})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, owner.ID, text(nil, &g.ID, "still there?"))
	assert.True(t, apperr.IsCode(err, apperr.CodePermissionDenied))

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = f.svc.Send(ctx, owner.ID, text(nil, &missing, "x"))
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestMarkRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "+15552000060")
	b := f.user(t, "+15552000061")
	c := f.user(t, "+15552000062")

	sent, err := f.svc.Send(ctx, a.ID, text(&b.ID, nil, "read me"))
	require.NoError(t, err)

	assert.True(t, apperr.IsCode(f.svc.MarkRead(ctx, c.ID, sent.Message.ID), apperr.CodeNotFound))
	require.NoError(t, f.svc.MarkRead(ctx, b.ID, sent.Message.ID))

	inbox, err := f.svc.Inbox(ctx, b.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, inbox.Items, 1)
	assert.True(t, inbox.Items[0].IsRead)
	assert.NotNil(t, inbox.Items[0].ReadAt)
	assert.Equal(t, "read me", inbox.Items[0].Message.Content)
}
