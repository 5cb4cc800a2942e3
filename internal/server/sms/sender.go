// Package sms 负责短信下发；实际的短信网关在进程之外
package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pigeon/internal/config"
)

// Sender 下发一条短信，返回网关请求 ID
type Sender interface {
	Send(ctx context.Context, phone, text string) (string, error)
}

// LogSender 只写日志，供开发环境使用
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, phone, text string) (string, error) {
	id := uuid.NewString()
	s.log.Info("sms dispatched", zap.String("request_id", id), zap.String("phone", maskPhone(phone)), zap.String("text", text))
	return id, nil
}

// New 根据配置创建 Sender，返回的 close 用于释放连接
func New(cfg config.SMS, log *zap.Logger) (Sender, func() error, error) {
	switch d := cfg.DriverOrDefault(); d {
	case "log":
		return NewLogSender(log), func() error { return nil }, nil
	case "amqp":
		s, err := DialAMQP(cfg.AMQPURL, cfg.QueueOrDefault())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sms driver: %s", d)
	}
}

// maskPhone 日志中只保留号码后四位
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
