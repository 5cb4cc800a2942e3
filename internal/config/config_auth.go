package config

import (
	"log"
	"os"
	"strings"
	"time"

	"pigeon/internal/server/auth"
)

// Auth 认证相关配置（从 YAML 读取的原始结构）
type Auth struct {
	JWTSecret  string `yaml:"jwt_secret" json:"jwt_secret"`
	SessionTTL string `yaml:"session_ttl" json:"session_ttl"`
	AdminTTL   string `yaml:"admin_ttl" json:"admin_ttl"`
	TokenBytes int    `yaml:"token_bytes" json:"token_bytes"`
}

// AuthSettings 为运行时使用的认证配置（已解析为具体类型）
type AuthSettings struct {
	JWTSecret  string
	SessionTTL time.Duration
	AdminTTL   time.Duration
	TokenBytes int
}

// ToSettings 解析 YAML 中的字符串时长并应用默认值，生成运行时配置
// 同时若未在配置文件提供 JWTSecret，则从环境变量回退，最后采用开发默认值
func (a Auth) ToSettings() AuthSettings {
	bytes := a.TokenBytes
	if bytes <= 0 {
		bytes = auth.DefaultTokenBytes
	}

	secret := strings.TrimSpace(a.JWTSecret)
	if secret == "" {
		if s := os.Getenv("JWT_SECRET"); strings.TrimSpace(s) != "" {
			secret = strings.TrimSpace(s)
		} else if s := os.Getenv("PIGEON_JWT_SECRET"); strings.TrimSpace(s) != "" {
			secret = strings.TrimSpace(s)
		} else {
			const dev = "dev-secret-change-me"
			log.Println("warning: JWT_SECRET not configured, falling back to the development secret")
			secret = dev
		}
	}

	return AuthSettings{
		JWTSecret:  secret,
		SessionTTL: parseDuration(a.SessionTTL, auth.DefaultSessionTTL),
		AdminTTL:   parseDuration(a.AdminTTL, auth.DefaultAdminTTL),
		TokenBytes: bytes,
	}
}
