package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionDuration is the length of time a session remains valid
const SessionDuration = time.Hour * 24 * 7 // 1 week

// Session represents a logged-in user session
type Session struct {
	ID       string `gorm:"primaryKey;size:64" json:"-"`
	Username string `gorm:"size:30;index" json:"-"`
	Email    string `gorm:"size:255" json:"-"`
	// LastPDFSendAt is the instant of the last accepted send-PDF action.
	// Nil until the first send; the cooldown gate reads and stamps it.
	LastPDFSendAt *time.Time `gorm:"index" json:"-"`
	CreatedAt     time.Time  `gorm:"not null" json:"-"`
	ExpiresAt     time.Time  `gorm:"index" json:"-"`
}

// BeforeCreate hook for sessions
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		// Default session expiry using SessionDuration constant
		s.ExpiresAt = now.Add(SessionDuration)
	}
	return nil
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "session"
}
