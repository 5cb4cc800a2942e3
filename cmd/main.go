package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pigeon/internal/api"
	"pigeon/internal/config"
	"pigeon/internal/repository"
	"pigeon/internal/server/db"
	"pigeon/internal/server/logger"
	"pigeon/internal/server/sms"
	"pigeon/internal/server/storage"
	adminsvc "pigeon/internal/service/admin"
	authsvc "pigeon/internal/service/auth"
	filesvc "pigeon/internal/service/file"
	groupsvc "pigeon/internal/service/group"
	messagesvc "pigeon/internal/service/message"
	notifysvc "pigeon/internal/service/notify"
	settingsvc "pigeon/internal/service/settings"
	usersvc "pigeon/internal/service/user"
	"pigeon/internal/worker"
)

func main() {
	// .env 可选，用于提供密钥等环境变量
	_ = godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if mode := cfg.Server.Mode; mode != "" {
		gin.SetMode(mode)
	}

	gdb, err := db.OpenGorm(cfg.Database)
	if err != nil {
		zlog.Fatal("数据库连接失败", zap.Error(err))
	}
	store := repository.New(gdb, cfg.Database.QueryTimeoutDuration())
	if err := store.Ping(context.Background()); err != nil {
		zlog.Fatal("数据库不可用", zap.Error(err))
	}

	zlog.Info("正在检查并迁移数据库结构")
	if err := db.Migrate(gdb); err != nil {
		zlog.Fatal("数据库迁移失败", zap.Error(err))
	}

	objects, err := storage.Open(cfg)
	if err != nil {
		zlog.Fatal("对象存储初始化失败", zap.Error(err))
	}
	if objects == nil {
		zlog.Warn("未配置对象存储，媒体上传不可用")
	}

	sender, closeSender, err := sms.New(cfg.SMS, zlog)
	if err != nil {
		zlog.Fatal("短信通道初始化失败", zap.Error(err))
	}
	defer func() { _ = closeSender() }()

	settings := settingsvc.NewService(store)
	services := api.Services{
		Auth:     authsvc.NewService(store, sender, cfg.Auth.ToSettings(), cfg.SMS.OTPLengthOrDefault(), zlog),
		Users:    usersvc.NewService(store, cfg.Chat),
		Groups:   groupsvc.NewService(store, cfg.Chat),
		Messages: messagesvc.NewService(store, cfg.Chat, zlog),
		Tokens:   notifysvc.NewService(store),
		Settings: settings,
		Admin:    adminsvc.NewService(store, cfg.Chat),
		Media:    filesvc.NewService(store, objects, cfg.Media, zlog),
	}
	r := api.SetupRouter(services, api.Options{
		Log:                zlog,
		MaintenanceMessage: cfg.Maintenance.MessageOrDefault(),
		Metrics:            cfg.Server.Metrics,
	})

	cleanup := worker.NewCleanup(store, zlog)
	cron, err := cleanup.Schedule(cfg.Maintenance.PurgeScheduleOrDefault())
	if err != nil {
		zlog.Fatal("定时任务配置错误", zap.Error(err))
	}
	cron.Start()

	srv := &http.Server{Addr: cfg.Server.AddrOrDefault(), Handler: r}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("正在关闭服务")
	<-cron.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP 服务关闭失败", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
