package entity

import (
	"encoding/json"
	"time"

	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale represents a finalized point-of-sale transaction. It is constructed
// once at checkout and immutable afterwards except for paid/due/status.
type Sale struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	InvoiceNo     string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	SaleDate      time.Time          `gorm:"not null" json:"sale_date"`
	Status        enum.SaleStatus    `gorm:"default:0" json:"status"`
	TotalItems    int                `gorm:"default:0" json:"total_items"`
	SubTotal      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Tax           int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Discount      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Total         int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	PaymentMethod string             `gorm:"size:50;not null" json:"payment_method"`
	Paid          int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Due           int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	PaymentStatus enum.PaymentStatus `gorm:"size:20;not null" json:"payment_status"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User       `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal float64 `json:"sub_total"`
		Tax      float64 `json:"tax"`
		Discount float64 `json:"discount"`
		Total    float64 `json:"total"`
		Paid     float64 `json:"paid"`
		Due      float64 `json:"due"`
	}{
		Alias:    Alias(s),
		SubTotal: float64(s.SubTotal) / 100,
		Tax:      float64(s.Tax) / 100,
		Discount: float64(s.Discount) / 100,
		Total:    float64(s.Total) / 100,
		Paid:     float64(s.Paid) / 100,
		Due:      float64(s.Due) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// GetTotalDecimal returns the total as a decimal
func (s *Sale) GetTotalDecimal() float64 {
	return float64(s.Total) / 100
}

// SaleItem represents a line item in a finalized sale. ProductName is a
// snapshot taken at checkout so receipts survive later product renames.
type SaleItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string         `gorm:"size:255;not null" json:"product_name"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	UnitPrice   int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Total       int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(si),
		UnitPrice: float64(si.UnitPrice) / 100,
		Total:     float64(si.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
