// Package worker 后台定时任务
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pigeon/internal/metrics"
	"pigeon/internal/repository"
)

// OTPRetention 已使用或已过期的验证码保留时长
const OTPRetention = 24 * time.Hour

type Cleanup struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewCleanup(store *repository.Store, log *zap.Logger) *Cleanup {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleanup{store: store, log: log, now: time.Now}
}

// Run 清理一次；返回删除的验证码与会话数量
func (c *Cleanup) Run(ctx context.Context) (otps, sessions int64, err error) {
	now := c.now()
	otps, err = c.store.PurgeOTPs(ctx, now.Add(-OTPRetention))
	if err != nil {
		return 0, 0, err
	}
	metrics.Purged("otps", otps)
	sessions, err = c.store.PurgeSessions(ctx, now)
	if err != nil {
		return otps, 0, err
	}
	metrics.Purged("sessions", sessions)
	return otps, sessions, nil
}

// Schedule 注册到 cron；schedule 支持标准表达式与 @every 写法
func (c *Cleanup) Schedule(schedule string) (*cron.Cron, error) {
	cr := cron.New(cron.WithLocation(time.UTC))
	_, err := cr.AddFunc(schedule, func() {
		otps, sessions, err := c.Run(context.Background())
		if err != nil {
			c.log.Error("purge failed", zap.Error(err))
			return
		}
		if otps > 0 || sessions > 0 {
			c.log.Info("purged expired rows", zap.Int64("otps", otps), zap.Int64("sessions", sessions))
		}
	})
	if err != nil {
		return nil, err
	}
	return cr, nil
}
