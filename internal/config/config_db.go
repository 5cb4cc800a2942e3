package config

import "time"

// Database 数据库连接配置（从 YAML 读取的原始结构）
type Database struct {
	Driver       string            `yaml:"driver" json:"driver"`
	Host         string            `yaml:"host" json:"host"`
	Port         int               `yaml:"port" json:"port"`
	User         string            `yaml:"user" json:"user"`
	Password     string            `yaml:"password" json:"password"`
	Name         string            `yaml:"name" json:"name"`
	Path         string            `yaml:"path" json:"path"` // sqlite 文件路径
	Params       map[string]string `yaml:"params" json:"params"`
	QueryTimeout string            `yaml:"query_timeout" json:"query_timeout"`
	MaxOpenConns int               `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int               `yaml:"max_idle_conns" json:"max_idle_conns"`
}

const DefaultQueryTimeout = 5 * time.Second

// QueryTimeoutDuration 每次存储调用的超时时间
func (d Database) QueryTimeoutDuration() time.Duration {
	return parseDuration(d.QueryTimeout, DefaultQueryTimeout)
}
