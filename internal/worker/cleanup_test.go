package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/testutil"
)

func TestRunPurgesStaleRows(t *testing.T) {
	store := repository.New(testutil.NewDB(t), time.Second)
	ctx := context.Background()
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	u := &models.User{PhoneNumber: "+15551110000", Name: "U"}
	require.NoError(t, store.CreateUser(ctx, u))

	require.NoError(t, store.CreateOTP(ctx, &models.OTP{PhoneNumber: u.PhoneNumber, Code: "111111", Purpose: models.OTPPurposeLogin, ExpiresAt: old}))
	require.NoError(t, store.CreateOTP(ctx, &models.OTP{PhoneNumber: u.PhoneNumber, Code: "222222", Purpose: models.OTPPurposeLogin, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.CreateOTP(ctx, &models.OTP{PhoneNumber: u.PhoneNumber, Code: "333333", Purpose: models.OTPPurposeLogin, ExpiresAt: now.Add(time.Hour)}))

	require.NoError(t, store.CreateSession(ctx, &models.Session{UserID: u.ID, Token: "expired", ExpiresAt: old}))
	require.NoError(t, store.CreateSession(ctx, &models.Session{UserID: u.ID, Token: "revoked", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.CreateSession(ctx, &models.Session{UserID: u.ID, Token: "live", ExpiresAt: now.Add(time.Hour)}))
	_, err := store.RevokeSession(ctx, "revoked")
	require.NoError(t, err)

	c := NewCleanup(store, nil)
	c.now = func() time.Time { return now }
	otps, sessions, err := c.Run(ctx)
	require.NoError(t, err)
	// 刚过期不足一天的验证码保留
	assert.EqualValues(t, 1, otps)
	assert.EqualValues(t, 2, sessions)

	_, err = store.ActiveSession(ctx, "live")
	assert.NoError(t, err)
}

func TestScheduleRejectsBadExpression(t *testing.T) {
	c := NewCleanup(nil, nil)
	_, err := c.Schedule("not a schedule")
	assert.Error(t, err)

	cr, err := c.Schedule("@every 1h")
	require.NoError(t, err)
	assert.Len(t, cr.Entries(), 1)
}
