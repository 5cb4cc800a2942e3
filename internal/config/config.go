package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      Server      `yaml:"server" json:"server"`
	Database    Database    `yaml:"database" json:"database"`
	Auth        Auth        `yaml:"auth" json:"auth"`
	Chat        Chat        `yaml:"chat" json:"chat"`
	SMS         SMS         `yaml:"sms" json:"sms"`
	Storage     Storage     `yaml:"storage" json:"storage"`
	Minio       Minio       `yaml:"minio" json:"minio"`
	OSS         OSS         `yaml:"oss" json:"oss"`
	Media       Media       `yaml:"media" json:"media"`
	Log         Log         `yaml:"log" json:"log"`
	Maintenance Maintenance `yaml:"maintenance" json:"maintenance"`
}

// EnvConfigPath 指定配置文件路径的环境变量
const EnvConfigPath = "PIGEON_CONFIG"

// LoadFromFile 读取指定路径的 YAML 配置文件
func LoadFromFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse 解析 YAML 内容
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath 返回配置文件路径：优先环境变量，否则 internal/config/config.yaml
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "internal", "config", "config.yaml"), nil
}

// LoadDefault 从默认路径加载配置
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFromFile(path)
}

// parseDuration 解析字符串时长，非法或非正数时返回默认值
func parseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
