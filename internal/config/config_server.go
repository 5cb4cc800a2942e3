package config

import (
	"strings"
	"time"
)

// Server HTTP 服务配置
type Server struct {
	Addr            string `yaml:"addr" json:"addr"`
	Mode            string `yaml:"mode" json:"mode"`
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	Metrics         bool   `yaml:"metrics" json:"metrics"`
}

func (s Server) AddrOrDefault() string {
	if a := strings.TrimSpace(s.Addr); a != "" {
		return a
	}
	return ":8080"
}

func (s Server) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(s.ShutdownTimeout, 10*time.Second)
}

// Log 日志配置
type Log struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// Maintenance 维护相关配置；维护模式开关以 app_settings 表为准
type Maintenance struct {
	Message       string `yaml:"message" json:"message"`
	PurgeSchedule string `yaml:"purge_schedule" json:"purge_schedule"`
}

const DefaultPurgeSchedule = "@every 1h"

func (m Maintenance) MessageOrDefault() string {
	if msg := strings.TrimSpace(m.Message); msg != "" {
		return msg
	}
	return "service is under maintenance"
}

func (m Maintenance) PurgeScheduleOrDefault() string {
	if s := strings.TrimSpace(m.PurgeSchedule); s != "" {
		return s
	}
	return DefaultPurgeSchedule
}
