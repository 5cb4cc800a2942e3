package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

func TestOTPLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	phone := "+15550030000"

	first := &models.OTP{PhoneNumber: phone, Code: "111111", Purpose: models.OTPPurposeSignup, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, s.CreateOTP(ctx, first))
	require.NoError(t, s.InvalidateOTPs(ctx, phone))
	second := &models.OTP{PhoneNumber: phone, Code: "222222", Purpose: models.OTPPurposeSignup, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, s.CreateOTP(ctx, second))

	latest, err := s.LatestOTP(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	ok, err := s.ConsumeOTP(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.ConsumeOTP(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.LatestOTP(ctx, phone)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	n, err := s.PurgeOTPs(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestFailOTPInvalidatesAfterMax(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	phone := "+15550030100"
	o := &models.OTP{PhoneNumber: phone, Code: "123456", Purpose: models.OTPPurposeLogin, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, s.CreateOTP(ctx, o))

	require.NoError(t, s.FailOTP(ctx, o.ID, 3))
	require.NoError(t, s.FailOTP(ctx, o.ID, 3))
	latest, err := s.LatestOTP(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Attempts)
	assert.Nil(t, latest.ConsumedAt)

	require.NoError(t, s.FailOTP(ctx, o.ID, 3))
	_, err = s.LatestOTP(ctx, phone)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	ok, err := s.ConsumeOTP(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "+15550031000", "U")

	live := &models.Session{UserID: u.ID, Token: "live", ExpiresAt: time.Now().Add(time.Hour)}
	expired := &models.Session{UserID: u.ID, Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, s.CreateSession(ctx, live))
	require.NoError(t, s.CreateSession(ctx, expired))

	got, err := s.ActiveSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	_, err = s.ActiveSession(ctx, "old")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	revoked, err := s.RevokeSession(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
	_, err = s.ActiveSession(ctx, "live")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	n, err := s.PurgeSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestAdmins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := &models.Admin{Username: "root", Email: "root@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateAdmin(ctx, a))
	err := s.CreateAdmin(ctx, &models.Admin{Username: "root", Email: "other@example.com", PasswordHash: "x"})
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyExists))

	got, err := s.GetAdminByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Nil(t, got.LastLoginAt)
	require.NoError(t, s.TouchAdminLogin(ctx, a.ID))
	got, err = s.GetAdmin(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
}

func TestTokensUpsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "+15550032000", "A")
	b := seedUser(t, s, "+15550032001", "B")

	tok := &models.NotificationToken{UserID: a.ID, Token: "push-1", DeviceID: "phone-a"}
	require.NoError(t, s.UpsertToken(ctx, tok))
	firstID := tok.ID

	moved := &models.NotificationToken{UserID: b.ID, Token: "push-1", DeviceID: "phone-b"}
	require.NoError(t, s.UpsertToken(ctx, moved))
	assert.Equal(t, firstID, moved.ID)
	assert.Equal(t, b.ID, moved.UserID)
	assert.Equal(t, "phone-b", moved.DeviceID)

	listA, err := s.ListTokens(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, listA)
	listB, err := s.ListTokens(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, listB, 1)

	removed, err := s.DeleteToken(ctx, a.ID, "push-1")
	require.NoError(t, err)
	assert.False(t, removed)
	removed, err = s.DeleteToken(ctx, b.ID, "push-1")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestSettingsSingleton(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	st, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, st.SignupEnabled)
	assert.False(t, st.MaintenanceMode)
	assert.Equal(t, 5, st.OTPExpiryMinutes)

	st, err = s.UpdateSettings(ctx, map[string]interface{}{"signup_enabled": false, "otp_expiry_minutes": 10})
	require.NoError(t, err)
	assert.False(t, st.SignupEnabled)
	assert.Equal(t, 10, st.OTPExpiryMinutes)
	assert.True(t, st.GroupsEnabled)

	again, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, again.SignupEnabled)
}

func TestSmsLogsAndAttachments(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSmsLog(ctx, &models.SmsLog{PhoneNumber: "+15550033000", Message: "code", Status: models.SmsStatusSent}))
	require.NoError(t, s.CreateSmsLog(ctx, &models.SmsLog{PhoneNumber: "+15550033999", Message: "code", Status: models.SmsStatusFailed}))

	logs, err := s.ListSmsLogs(ctx, Page{Page: 1, Limit: 10}, "3999")
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, models.SmsStatusFailed, logs.Items[0].Status)

	u := seedUser(t, s, "+15550033001", "U")
	a := &models.Attachment{UploaderID: u.ID, Provider: "minio", Bucket: "b", ObjectKey: "k/1", FileName: "a.png", SizeBytes: 3}
	require.NoError(t, s.CreateAttachment(ctx, a))
	got, err := s.GetAttachment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.png", got.FileName)
	_, err = s.GetAttachment(ctx, "nope")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
