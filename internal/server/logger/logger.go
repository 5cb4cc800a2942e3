package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pigeon/internal/config"
)

// New 根据配置构建进程日志器；development 模式输出可读格式
func New(cfg config.Log) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
			return nil, err
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
