package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginHistory records a login attempt for a staff account. Both
// successful and failed attempts are kept.
type LoginHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	Success   bool      `gorm:"not null" json:"success"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new login history record
func (lh *LoginHistory) BeforeCreate(tx *gorm.DB) error {
	if lh.ID == uuid.Nil {
		lh.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LoginHistory model
func (LoginHistory) TableName() string {
	return "login_history"
}
