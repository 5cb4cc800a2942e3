package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

func TestMessageTargetCheck(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "+15550020000", "A")
	b := seedUser(t, s, "+15550020001", "B")
	g := &models.Group{Name: "G", CreatorID: a.ID}
	require.NoError(t, s.CreateGroup(ctx, g))

	t.Run("neither target", func(t *testing.T) {
		err := s.CreateMessage(ctx, &models.Message{FromID: a.ID, Content: "x", Type: models.MessageTypeText})
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument), "got %v", err)
	})
	t.Run("both targets", func(t *testing.T) {
		err := s.CreateMessage(ctx, &models.Message{FromID: a.ID, ToID: &b.ID, GroupID: &g.ID, Content: "x", Type: models.MessageTypeText})
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument), "got %v", err)
	})
	t.Run("group target", func(t *testing.T) {
		err := s.CreateMessage(ctx, &models.Message{FromID: a.ID, GroupID: &g.ID, Content: "x", Type: models.MessageTypeText})
		assert.NoError(t, err)
	})
}

func TestInboxAndRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "+15550021000", "A")
	b := seedUser(t, s, "+15550021001", "B")

	var ids []string
	for _, text := range []string{"first", "second"} {
		m := &models.Message{
			FromID:   a.ID,
			ToID:     &b.ID,
			Content:  text,
			Metadata: datatypes.JSONMap{"lang": "en"},
			Type:     models.MessageTypeText,
		}
		require.NoError(t, s.CreateMessage(ctx, m))
		n, err := s.FanOut(ctx, m.ID, []string{b.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		ids = append(ids, m.ID)
		time.Sleep(5 * time.Millisecond)
	}

	inbox, err := s.Inbox(ctx, b.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, inbox.Items, 2)
	assert.EqualValues(t, 2, inbox.TotalCount)
	require.NotNil(t, inbox.Items[0].Message)
	assert.Equal(t, "second", inbox.Items[0].Message.Content)
	assert.Equal(t, "en", inbox.Items[0].Message.Metadata["lang"])

	unread, err := s.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, s.MarkRead(ctx, b.ID, ids[0]))
	require.NoError(t, s.MarkRead(ctx, b.ID, ids[0]))
	unread, err = s.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// 发送者没有投递记录
	assert.True(t, apperr.IsCode(s.MarkRead(ctx, a.ID, ids[0]), apperr.CodeNotFound))

	empty, err := s.Inbox(ctx, a.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestFanOutDuplicateRecipient(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "+15550022000", "A")
	b := seedUser(t, s, "+15550022001", "B")
	m := &models.Message{FromID: a.ID, ToID: &b.ID, Content: "x", Type: models.MessageTypeText}
	require.NoError(t, s.CreateMessage(ctx, m))

	_, err := s.FanOut(ctx, m.ID, []string{b.ID, b.ID})
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyExists))
}

func TestInboxHidesBlockedSenders(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "+15550023000", "A")
	b := seedUser(t, s, "+15550023001", "B")
	c := seedUser(t, s, "+15550023002", "C")

	send := func(from, to *models.User, text string) {
		m := &models.Message{FromID: from.ID, ToID: &to.ID, Content: text, Type: models.MessageTypeText}
		require.NoError(t, s.CreateMessage(ctx, m))
		_, err := s.FanOut(ctx, m.ID, []string{to.ID})
		require.NoError(t, err)
	}
	send(a, b, "before block")
	send(c, b, "from c")
	send(b, a, "reply")

	_, err := s.CreateBlock(ctx, b.ID, a.ID)
	require.NoError(t, err)

	inbox, err := s.Inbox(ctx, b.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, inbox.Items, 1)
	assert.EqualValues(t, 1, inbox.TotalCount)
	assert.Equal(t, "from c", inbox.Items[0].Message.Content)
	unread, err := s.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// 被拉黑的一方同样看不到拉黑者的消息
	inbox, err = s.Inbox(ctx, a.ID, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, inbox.TotalCount)

	_, err = s.DeleteBlock(ctx, b.ID, a.ID)
	require.NoError(t, err)
	unread, err = s.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)
}
