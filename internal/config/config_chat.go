package config

import "time"

// Chat 分页与消息相关配置
type Chat struct {
	DefaultPageSize int `yaml:"default_page_size" json:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size" json:"max_page_size"`
	MaxContentChars int `yaml:"max_content_chars" json:"max_content_chars"`
}

const (
	DefaultPageSize     = 20
	DefaultMaxPageSize  = 100
	DefaultContentChars = 4000
)

func (c Chat) PageSizeOrDefault() int {
	if c.DefaultPageSize <= 0 {
		return DefaultPageSize
	}
	return c.DefaultPageSize
}

func (c Chat) MaxPageSizeOrDefault() int {
	if c.MaxPageSize <= 0 {
		return DefaultMaxPageSize
	}
	return c.MaxPageSize
}

func (c Chat) ContentCharsOrDefault() int {
	if c.MaxContentChars <= 0 {
		return DefaultContentChars
	}
	return c.MaxContentChars
}

// Media 附件上传相关配置
type Media struct {
	MaxSizeBytes int64  `yaml:"max_size_bytes" json:"max_size_bytes"`
	PresignTTL   string `yaml:"presign_ttl" json:"presign_ttl"`
}

const (
	DefaultMediaMaxBytes   = 20 << 20
	DefaultMediaPresignTTL = 15 * time.Minute
)

func (m Media) MaxSizeOrDefault() int64 {
	if m.MaxSizeBytes <= 0 {
		return DefaultMediaMaxBytes
	}
	return m.MaxSizeBytes
}

func (m Media) PresignTTLDuration() time.Duration {
	return parseDuration(m.PresignTTL, DefaultMediaPresignTTL)
}
