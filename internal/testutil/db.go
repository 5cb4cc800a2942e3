// Package testutil 提供测试用的内存数据库
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pigeon/internal/config"
	"pigeon/internal/server/db"
)

var seq atomic.Int64

// NewDB 打开一个独立的内存 sqlite 库（开启外键）并完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("pigeon_test_%d", seq.Add(1))
	gdb, err := db.OpenGorm(config.Database{
		Driver: "sqlite",
		Path:   name,
		Params: map[string]string{"mode": "memory", "cache": "shared"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
