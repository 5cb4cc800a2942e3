package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pigeon/internal/config"
)

func TestOpen(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		s, err := Open(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, s)
	})
	t.Run("unknown provider", func(t *testing.T) {
		_, err := Open(&config.Config{Storage: config.Storage{Provider: "s3"}})
		assert.Error(t, err)
	})
	t.Run("minio without endpoint", func(t *testing.T) {
		_, err := Open(&config.Config{Storage: config.Storage{Provider: "minio"}})
		assert.EqualError(t, err, "minio endpoint is empty")
	})
	t.Run("oss without bucket", func(t *testing.T) {
		_, err := Open(&config.Config{
			Storage: config.Storage{Provider: "oss"},
			OSS:     config.OSS{Region: "cn-hangzhou"},
		})
		assert.EqualError(t, err, "oss bucket is empty")
	})
	t.Run("oss", func(t *testing.T) {
		s, err := Open(&config.Config{
			Storage: config.Storage{Provider: "OSS"},
			OSS:     config.OSS{Region: "cn-hangzhou", Bucket: "media", AccessKeyID: "ak", AccessKeySecret: "sk"},
		})
		require.NoError(t, err)
		assert.Equal(t, "oss", s.Provider())
		assert.Equal(t, "media", s.Bucket())
	})
}
