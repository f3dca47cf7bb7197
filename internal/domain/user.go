package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the persisted auth record. The todo core only ever reads its ID to
// establish ownership; creation and credential checks live in the auth
// service. PasswordHash is a bcrypt hash and must never be serialized.
type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:320;not null"`
	Name         string `gorm:"size:120"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Session is a DB-backed login session. The token doubles as the primary key
// and is the opaque value carried by the session cookie.
type Session struct {
	Token     string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the session is past its expiry at time now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
