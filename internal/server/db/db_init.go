package db

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pigeon/internal/config"
	"pigeon/internal/models"
)

// DSN 构造适用于 GORM 的数据库连接串
func DSN(d config.Database) (string, error) {
	switch d.Driver {
	case "postgres":
		params := map[string]string{"sslmode": "disable", "TimeZone": "UTC"}
		for k, v := range d.Params {
			params[k] = v
		}
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		fmt.Fprintf(&b, "host=%s port=%d user=%s password=%s dbname=%s", d.Host, d.Port, d.User, d.Password, d.Name)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, params[k])
		}
		return b.String(), nil
	case "sqlite":
		path := d.Path
		if path == "" {
			path = "pigeon.db"
		}
		v := url.Values{}
		v.Set("_foreign_keys", "on")
		for k, val := range d.Params {
			v.Set(k, val)
		}
		return "file:" + path + "?" + v.Encode(), nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", d.Driver)
	}
}

// OpenGorm 使用 GORM 打开数据库连接
// TranslateError 打开后，唯一键冲突统一表现为 gorm.ErrDuplicatedKey
func OpenGorm(d config.Database) (*gorm.DB, error) {
	dsn, err := DSN(d)
	if err != nil {
		return nil, err
	}
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
	var db *gorm.DB
	switch d.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", d.Driver)
	}
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if d.Driver == "sqlite" {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	if d.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(d.MaxOpenConns)
	}
	if d.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(d.MaxIdleConns)
	}
	return db, nil
}

// Migrate 自动迁移全部表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
