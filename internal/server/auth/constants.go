package auth

import "time"

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	DefaultAdminTTL   = 12 * time.Hour
	DefaultTokenBytes = 32
)

// 令牌所代表的主体类型
const (
	KindUser  = "user"
	KindAdmin = "admin"
)
