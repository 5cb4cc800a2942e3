package adminsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/server/auth"
	"pigeon/internal/testutil"
)

func setup(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := repository.New(testutil.NewDB(t), time.Second)
	return NewService(store, config.Chat{}), store
}

func TestCreateAdmin(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	a, err := svc.CreateAdmin(ctx, NewAdmin{Username: "root", Email: "root@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	saved, err := store.GetAdminByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, a.ID, saved.ID)
	assert.True(t, auth.CheckPassword(saved.PasswordHash, "correct-horse"))

	_, err = svc.CreateAdmin(ctx, NewAdmin{Username: "root", Email: "other@example.com", Password: "correct-horse"})
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyExists))
	_, err = svc.CreateAdmin(ctx, NewAdmin{Username: "other", Email: "root@example.com", Password: "correct-horse"})
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyExists))
}

func TestCreateAdminValidates(t *testing.T) {
	svc, _ := setup(t)
	cases := map[string]NewAdmin{
		"empty username": {Email: "a@example.com", Password: "long-enough"},
		"bad email":      {Username: "a", Email: "nope", Password: "long-enough"},
		"short password": {Username: "a", Email: "a@example.com", Password: "short"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateAdmin(context.Background(), in)
			assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
		})
	}
}

func TestListings(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	a := &models.User{PhoneNumber: "+15558000000", Name: "A"}
	b := &models.User{PhoneNumber: "+15558000001", Name: "B"}
	require.NoError(t, store.CreateUser(ctx, a))
	require.NoError(t, store.CreateUser(ctx, b))
	require.NoError(t, store.CreateUserReport(ctx, &models.ReportedUser{ReporterID: a.ID, TargetID: b.ID, Reason: "spam"}))
	require.NoError(t, store.CreateUserReport(ctx, &models.ReportedUser{ReporterID: a.ID, TargetID: b.ID, Reason: "spam"}))
	require.NoError(t, store.CreateSmsLog(ctx, &models.SmsLog{PhoneNumber: a.PhoneNumber, Message: "x", Status: models.SmsStatusSent}))
	require.NoError(t, store.CreateSmsLog(ctx, &models.SmsLog{PhoneNumber: b.PhoneNumber, Message: "y", Status: models.SmsStatusFailed}))

	reports, err := svc.UserReports(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, reports.TotalCount)
	assert.Len(t, reports.Items, 1)

	groups, err := svc.GroupReports(ctx, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, groups.TotalCount)
	assert.Empty(t, groups.Items)

	logs, err := svc.SmsLogs(ctx, 1, 20, "8000001")
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, models.SmsStatusFailed, logs.Items[0].Status)
}
