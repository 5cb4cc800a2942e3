package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: sqlite\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, DefaultQueryTimeout, cfg.Database.QueryTimeoutDuration())
	assert.Equal(t, ":8080", cfg.Server.AddrOrDefault())
	assert.Equal(t, 20, cfg.Chat.PageSizeOrDefault())
	assert.Equal(t, 100, cfg.Chat.MaxPageSizeOrDefault())
	assert.Equal(t, "log", cfg.SMS.DriverOrDefault())
	assert.Equal(t, DefaultSMSQueue, cfg.SMS.QueueOrDefault())
	assert.Equal(t, DefaultOTPLength, cfg.SMS.OTPLengthOrDefault())
	assert.Equal(t, "none", cfg.Storage.ProviderOrDefault())
	assert.Equal(t, DefaultPurgeSchedule, cfg.Maintenance.PurgeScheduleOrDefault())
}

func TestInvalidDurationFallsBack(t *testing.T) {
	d := Database{QueryTimeout: "soon"}
	assert.Equal(t, DefaultQueryTimeout, d.QueryTimeoutDuration())
	d.QueryTimeout = "250ms"
	assert.Equal(t, 250*time.Millisecond, d.QueryTimeoutDuration())
	d.QueryTimeout = "-1s"
	assert.Equal(t, DefaultQueryTimeout, d.QueryTimeoutDuration())
}

func TestAuthToSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	s := Auth{SessionTTL: "2h"}.ToSettings()
	assert.Equal(t, "from-env", s.JWTSecret)
	assert.Equal(t, 2*time.Hour, s.SessionTTL)
	assert.Greater(t, s.AdminTTL, time.Duration(0))
	assert.Greater(t, s.TokenBytes, 0)

	s = Auth{JWTSecret: " explicit "}.ToSettings()
	assert.Equal(t, "explicit", s.JWTSecret)
}

func TestLoadDefaultFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pigeon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.AddrOrDefault())
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := LoadFromFile("config.example.yaml")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "minio", cfg.Storage.ProviderOrDefault())
	assert.Equal(t, 15*time.Minute, cfg.Media.PresignTTLDuration())
}

func TestStorageCredentialsFallBackToEnv(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY", "env-ak")
	t.Setenv("MINIO_SECRET_KEY", "env-sk")
	ak, sk := Minio{AccessKey: " file-ak "}.Credentials()
	assert.Equal(t, "file-ak", ak)
	assert.Equal(t, "env-sk", sk)

	t.Setenv("OSS_ACCESS_KEY_ID", "")
	t.Setenv("OSS_ACCESS_KEY_SECRET", "oss-secret")
	id, secret := OSS{}.Credentials()
	assert.Equal(t, "", id)
	assert.Equal(t, "oss-secret", secret)
}
