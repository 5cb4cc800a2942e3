package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// Valid 报告角色是否为可分配的取值
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator
}

type OTPPurpose string

const (
	OTPPurposeSignup OTPPurpose = "signup"
	OTPPurposeLogin  OTPPurpose = "login"
)

type MessageType int

const (
	MessageTypeText   MessageType = 1
	MessageTypeImage  MessageType = 2
	MessageTypeFile   MessageType = 3
	MessageTypeSystem MessageType = 4
)

type SmsStatus string

const (
	SmsStatusSent   SmsStatus = "sent"
	SmsStatusFailed SmsStatus = "failed"
)

// Users
// 主键为应用层生成的字符串 UUID（见 hooks.go）
// 删除用户时，依赖行通过外键级联删除
type User struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	PhoneNumber string    `gorm:"size:32;uniqueIndex;not null" json:"phone_number"`
	Name        string    `gorm:"size:100;not null;default:''" json:"name"`
	Email       *string   `gorm:"size:255" json:"email,omitempty"`
	Photo       *string   `gorm:"size:512" json:"photo,omitempty"`
	Status      *string   `gorm:"size:255" json:"status,omitempty"`
	Verified    bool      `gorm:"not null;default:false" json:"verified"`
	Disabled    bool      `gorm:"not null;default:false" json:"disabled"`
	Role        Role      `gorm:"type:varchar(16);not null;default:user" json:"role"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// 一次性验证码
// 注册阶段尚无用户，因此 UserID 可空
type OTP struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	PhoneNumber string     `gorm:"size:32;not null;index:idx_otps_phone_created,priority:1" json:"phone_number"`
	UserID      *string    `gorm:"type:char(36);index" json:"user_id,omitempty"`
	User        *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Code        string     `gorm:"size:10;not null" json:"-"`
	Purpose     OTPPurpose `gorm:"type:varchar(16);not null" json:"purpose"`
	ExpiresAt   time.Time  `gorm:"not null;index" json:"expires_at"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	ConsumedAt  *time.Time `json:"consumed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_otps_phone_created,priority:2" json:"created_at"`
}

// 登录会话；Token 作为 JWT 的 jti，撤销后令牌立即失效
// 同一用户允许多个并发会话
type Session struct {
	ID        string     `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:char(36);not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token     string     `gorm:"size:128;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	IP        *string    `gorm:"size:64" json:"ip,omitempty"`
	UserAgent *string    `gorm:"size:256" json:"user_agent,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

// 管理员，与聊天用户相互独立
type Admin struct {
	ID           string     `gorm:"type:char(36);primaryKey" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

type Group struct {
	ID                string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null;index" json:"name"`
	CreatorID         string    `gorm:"type:char(36);not null;index" json:"creator_id"`
	Creator           *User     `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	Photo             *string   `gorm:"size:512" json:"photo,omitempty"`
	OnlyAdminsCanPost bool      `gorm:"not null;default:false" json:"only_admins_can_post"`
	Disabled          bool      `gorm:"not null;default:false" json:"disabled"`
	CreatedAt         time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

// 群成员；(group, user) 唯一
// 添加者被删除时 AddedBy 置空
type GroupMember struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	GroupID   string    `gorm:"type:char(36);not null;uniqueIndex:uidx_group_member,priority:1" json:"group_id"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:uidx_group_member,priority:2;index" json:"user_id"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	AddedBy   *string   `gorm:"type:char(36);index" json:"added_by,omitempty"`
	Adder     *User     `gorm:"foreignKey:AddedBy;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"joined_at"`
}

// 消息：ToID 与 GroupID 有且仅有一个非空
// 创建后不再修改，发送者、接收者或群被删除时级联删除
type Message struct {
	ID        string            `gorm:"type:char(36);primaryKey" json:"id"`
	FromID    string            `gorm:"type:char(36);not null;index" json:"from_id"`
	From      *User             `gorm:"foreignKey:FromID;constraint:OnDelete:CASCADE" json:"-"`
	ToID      *string           `gorm:"type:char(36);index;check:chk_messages_target,(to_id IS NULL) <> (group_id IS NULL)" json:"to_id,omitempty"`
	To        *User             `gorm:"foreignKey:ToID;constraint:OnDelete:CASCADE" json:"-"`
	GroupID   *string           `gorm:"type:char(36);index" json:"group_id,omitempty"`
	Group     *Group            `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string            `gorm:"type:text;not null;default:''" json:"content"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	Type      MessageType       `gorm:"not null;default:1" json:"type"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
}

// 每个接收者一行的投递记录，已读状态互不影响
type UserMessage struct {
	ID        string     `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:char(36);not null;uniqueIndex:uidx_user_message,priority:1;index:idx_user_messages_inbox,priority:1" json:"user_id"`
	MessageID string     `gorm:"type:char(36);not null;uniqueIndex:uidx_user_message,priority:2;index" json:"message_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message   *Message   `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"message,omitempty"`
	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;index:idx_user_messages_inbox,priority:2" json:"created_at"`
}

// 拉黑关系，(blocker, blocked) 唯一
type BlockedUser struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	BlockerID string    `gorm:"type:char(36);not null;uniqueIndex:uidx_block_pair,priority:1" json:"blocker_id"`
	BlockedID string    `gorm:"type:char(36);not null;uniqueIndex:uidx_block_pair,priority:2;index" json:"blocked_id"`
	Blocker   *User     `gorm:"foreignKey:BlockerID;constraint:OnDelete:CASCADE" json:"-"`
	Blocked   *User     `gorm:"foreignKey:BlockedID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// 推送令牌，令牌全局唯一；重复注册时归属以最后一次为准
type NotificationToken struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"token"`
	DeviceID  string    `gorm:"size:128;not null;default:''" json:"device_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 举报记录，只追加
type ReportedUser struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	ReporterID string    `gorm:"type:char(36);not null;index" json:"reporter_id"`
	TargetID   string    `gorm:"type:char(36);not null;index" json:"target_id"`
	Reporter   *User     `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	Target     *User     `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

type ReportedGroup struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	ReporterID string    `gorm:"type:char(36);not null;index" json:"reporter_id"`
	GroupID    string    `gorm:"type:char(36);not null;index" json:"group_id"`
	Reporter   *User     `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	Group      *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

// 应用设置，单行（ID 固定为 1）
// 布尔列不设数据库默认值：GORM 创建时会跳过零值字段，带 default:true 的列无法写入 false
type AppSettings struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	BroadcastEnabled   bool      `gorm:"not null" json:"broadcast_enabled"`
	GroupsEnabled      bool      `gorm:"not null" json:"groups_enabled"`
	StatusEnabled      bool      `gorm:"not null" json:"status_enabled"`
	CallsEnabled       bool      `gorm:"not null" json:"calls_enabled"`
	AttachmentsEnabled bool      `gorm:"not null" json:"attachments_enabled"`
	SignupEnabled      bool      `gorm:"not null" json:"signup_enabled"`
	MaintenanceMode    bool      `gorm:"not null" json:"maintenance_mode"`
	OTPExpiryMinutes   int       `gorm:"not null" json:"otp_expiry_minutes"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

const AppSettingsID uint = 1

// DefaultAppSettings 首次读取时写入的默认设置
func DefaultAppSettings() AppSettings {
	return AppSettings{
		ID:                 AppSettingsID,
		BroadcastEnabled:   true,
		GroupsEnabled:      true,
		StatusEnabled:      true,
		CallsEnabled:       true,
		AttachmentsEnabled: true,
		SignupEnabled:      true,
		OTPExpiryMinutes:   5,
	}
}

// 短信发送审计，只追加
type SmsLog struct {
	ID                string    `gorm:"type:char(36);primaryKey" json:"id"`
	PhoneNumber       string    `gorm:"size:32;not null;index" json:"phone_number"`
	Message           string    `gorm:"type:text;not null" json:"message"`
	ProviderRequestID *string   `gorm:"size:128" json:"provider_request_id,omitempty"`
	Status            SmsStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Error             *string   `gorm:"size:512" json:"error,omitempty"`
	CreatedAt         time.Time `gorm:"not null;index" json:"created_at"`
}

// 上传的媒体对象，URL 通过预签名获取
type Attachment struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	UploaderID string    `gorm:"type:char(36);not null;index" json:"uploader_id"`
	Uploader   *User     `gorm:"foreignKey:UploaderID;constraint:OnDelete:CASCADE" json:"-"`
	Provider   string    `gorm:"size:16;not null" json:"provider"`
	Bucket     string    `gorm:"size:128;not null" json:"-"`
	ObjectKey  string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	MimeType   string    `gorm:"size:128" json:"mime_type"`
	SizeBytes  int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// All 按外键依赖顺序返回全部模型，供迁移使用
func All() []interface{} {
	return []interface{}{
		&User{},
		&Admin{},
		&OTP{},
		&Session{},
		&Group{},
		&GroupMember{},
		&Message{},
		&UserMessage{},
		&BlockedUser{},
		&NotificationToken{},
		&ReportedUser{},
		&ReportedGroup{},
		&AppSettings{},
		&SmsLog{},
		&Attachment{},
	}
}
