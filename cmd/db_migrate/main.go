package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/repository"
	"pigeon/internal/server/db"
	adminsvc "pigeon/internal/service/admin"
)

func main() {
	adminUser := flag.String("admin-user", "", "创建的管理员用户名（可选）")
	adminEmail := flag.String("admin-email", "", "管理员邮箱")
	adminPassword := flag.String("admin-password", "", "管理员密码")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}

	// 1) postgres 需先确保数据库存在；sqlite 打开即创建
	if cfg.Database.Driver == "postgres" {
		if err := ensureDatabase(cfg.Database); err != nil {
			log.Fatalf("创建数据库失败: %v", err)
		}
	}

	// 2) 连接目标库并自动迁移
	gdb, err := db.OpenGorm(cfg.Database)
	if err != nil {
		log.Fatalf("GORM 连接数据库失败: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("AutoMigrate 失败: %v", err)
	}
	log.Println("AutoMigrate 完成，数据库结构已根据 models 创建/更新")

	// 3) 可选：初始化管理员
	if *adminUser == "" {
		return
	}
	store := repository.New(gdb, cfg.Database.QueryTimeoutDuration())
	a, err := adminsvc.NewService(store, cfg.Chat).CreateAdmin(context.Background(), adminsvc.NewAdmin{
		Username: *adminUser,
		Email:    *adminEmail,
		Password: *adminPassword,
	})
	switch {
	case apperr.IsCode(err, apperr.CodeAlreadyExists):
		log.Printf("管理员 %s 已存在，跳过", *adminUser)
	case err != nil:
		log.Fatalf("创建管理员失败: %v", err)
	default:
		log.Printf("管理员 %s 已创建 (id=%s)", a.Username, a.ID)
	}
}

// ensureDatabase 连接到服务器级的 postgres 库，目标库不存在时创建
func ensureDatabase(d config.Database) error {
	server := d
	server.Name = "postgres"
	dsn, err := db.DSN(server)
	if err != nil {
		return err
	}
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("连接到 PostgreSQL 服务器失败: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL 服务器不可用: %w", err)
	}

	var exists bool
	if err := conn.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", d.Name).Scan(&exists); err != nil {
		return fmt.Errorf("检查数据库存在性失败: %w", err)
	}
	if exists {
		log.Printf("数据库 %s 已存在", d.Name)
		return nil
	}
	stmt := "CREATE DATABASE " + pgx.Identifier{d.Name}.Sanitize() + " ENCODING 'UTF8'"
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return err
	}
	log.Printf("数据库 %s 不存在，已创建成功", d.Name)
	return nil
}
