package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error { ensureID(&u.ID); return nil }
func (o *OTP) BeforeCreate(*gorm.DB) error { ensureID(&o.ID); return nil }
func (s *Session) BeforeCreate(*gorm.DB) error { ensureID(&s.ID); return nil }
func (a *Admin) BeforeCreate(*gorm.DB) error { ensureID(&a.ID); return nil }
func (g *Group) BeforeCreate(*gorm.DB) error { ensureID(&g.ID); return nil }
func (m *GroupMember) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Message) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *UserMessage) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (b *BlockedUser) BeforeCreate(*gorm.DB) error { ensureID(&b.ID); return nil }
func (t *NotificationToken) BeforeCreate(*gorm.DB) error { ensureID(&t.ID); return nil }
func (r *ReportedUser) BeforeCreate(*gorm.DB) error { ensureID(&r.ID); return nil }
func (r *ReportedGroup) BeforeCreate(*gorm.DB) error { ensureID(&r.ID); return nil }
func (l *SmsLog) BeforeCreate(*gorm.DB) error { ensureID(&l.ID); return nil }
func (a *Attachment) BeforeCreate(*gorm.DB) error { ensureID(&a.ID); return nil }
