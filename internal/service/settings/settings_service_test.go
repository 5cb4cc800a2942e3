package settingsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigeon/internal/apperr"
	"pigeon/internal/models"
	"pigeon/internal/repository"
	"pigeon/internal/testutil"
)

func boolp(b bool) *bool { return &b }

func intp(i int) *int { return &i }

func TestDefaults(t *testing.T) {
	svc := NewService(repository.New(testutil.NewDB(t), time.Second))
	st, err := svc.Get(context.Background())
	require.NoError(t, err)
	def := models.DefaultAppSettings()
	assert.Equal(t, def.GroupsEnabled, st.GroupsEnabled)
	assert.Equal(t, def.OTPExpiryMinutes, st.OTPExpiryMinutes)
	assert.False(t, st.MaintenanceMode)
}

func TestUpdateIsPartial(t *testing.T) {
	svc := NewService(repository.New(testutil.NewDB(t), time.Second))
	ctx := context.Background()

	st, err := svc.Update(ctx, Patch{GroupsEnabled: boolp(false)})
	require.NoError(t, err)
	assert.False(t, st.GroupsEnabled)
	assert.True(t, st.SignupEnabled)

	st, err = svc.Update(ctx, Patch{OTPExpiryMinutes: intp(10), MaintenanceMode: boolp(true)})
	require.NoError(t, err)
	assert.False(t, st.GroupsEnabled)
	assert.True(t, st.MaintenanceMode)
	assert.Equal(t, 10, st.OTPExpiryMinutes)

	st, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, st.OTPExpiryMinutes)
}

func TestUpdateRejectsExpiryOutOfRange(t *testing.T) {
	svc := NewService(repository.New(testutil.NewDB(t), time.Second))
	for _, v := range []int{0, -1, 61} {
		_, err := svc.Update(context.Background(), Patch{OTPExpiryMinutes: intp(v)})
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument), "value %d", v)
	}
}
