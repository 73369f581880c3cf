package entity

import (
	"time"

	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an in-app notification record. Delivery transport
// (email, push) is out of scope; these are stored and listed only.
type Notification struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID                 `gorm:"type:uuid;not null;index" json:"user_id"`
	Severity  enum.NotificationSeverity `gorm:"size:20;not null" json:"severity"`
	Title     string                    `gorm:"size:255;not null" json:"title"`
	Message   string                    `gorm:"type:text" json:"message"`
	Read      bool                      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	DeletedAt gorm.DeletedAt            `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new notification
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
