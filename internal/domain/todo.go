package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo is a single task owned by exactly one user. Ownership is fixed at
// creation time; every mutating query filters by UserID as well as ID, so a
// todo is never reachable through another user's session.
type Todo struct {
	ID          string  `gorm:"primaryKey"`
	Title       string  `gorm:"not null"`
	Description *string // nullable, serialized as null when absent
	Completed   bool    `gorm:"not null;default:false"`
	UserID      string  `gorm:"not null;index"`
	User        User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns a UUID primary key unless the caller provided one.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
