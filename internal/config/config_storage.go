package config

import (
	"os"
	"strings"
)

type Storage struct {
	Provider string `yaml:"provider" json:"provider"`
}

// ProviderOrDefault 返回对象存储提供方，未配置时为 none（不启用媒体上传）
func (s Storage) ProviderOrDefault() string {
	p := strings.ToLower(strings.TrimSpace(s.Provider))
	if p == "" {
		return "none"
	}
	return p
}

type Minio struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"-"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// Credentials 配置文件未填写时从 MINIO_ACCESS_KEY / MINIO_SECRET_KEY 读取
func (m Minio) Credentials() (string, string) {
	return orEnv(m.AccessKey, "MINIO_ACCESS_KEY"), orEnv(m.SecretKey, "MINIO_SECRET_KEY")
}

type OSS struct {
	Region          string `yaml:"region" json:"region"`
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret" json:"-"`
	SecurityToken   string `yaml:"security_token" json:"-"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	DisableSSL      bool   `yaml:"disable_ssl" json:"disable_ssl"`
	UseCName        bool   `yaml:"use_cname" json:"use_cname"`
	UsePathStyle    bool   `yaml:"use_path_style" json:"use_path_style"`
}

// Credentials 配置文件未填写时从 OSS_ACCESS_KEY_ID / OSS_ACCESS_KEY_SECRET 读取
func (o OSS) Credentials() (string, string) {
	return orEnv(o.AccessKeyID, "OSS_ACCESS_KEY_ID"), orEnv(o.AccessKeySecret, "OSS_ACCESS_KEY_SECRET")
}

func orEnv(v, key string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(key))
}
