package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/google/uuid"
)

// CartItem is a line in an in-progress sale. Quantity is always >= 1;
// Total is kept equal to UnitPrice * Quantity by Recalculate.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"-"` // cents
	Quantity  int       `json:"quantity"`
	Total     int64     `json:"-"` // cents
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (ci CartItem) MarshalJSON() ([]byte, error) {
	type Alias CartItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(ci),
		UnitPrice: float64(ci.UnitPrice) / 100,
		Total:     float64(ci.Total) / 100,
	})
}

// Cart is the session-scoped state of a sale being built. It is NOT a
// database entity — one cart lives in memory per authenticated user and
// is discarded when the sale completes or is abandoned.
type Cart struct {
	UserID        uuid.UUID          `json:"user_id"`
	Status        enum.CartStatus    `json:"status"`
	Items         []CartItem         `json:"items"`
	Customer      *Customer          `json:"customer,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Paid          int64              `json:"-"` // cents; may be negative until checkout validation
	Notes         string             `json:"notes"`
	SubTotal      int64              `json:"-"` // cents
	Tax           int64              `json:"-"` // cents
	Total         int64              `json:"-"` // cents
	UpdatedAt     time.Time          `json:"updated_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (c Cart) MarshalJSON() ([]byte, error) {
	type Alias Cart
	return json.Marshal(&struct {
		Alias
		Paid     float64 `json:"paid"`
		SubTotal float64 `json:"sub_total"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	}{
		Alias:    Alias(c),
		Paid:     float64(c.Paid) / 100,
		SubTotal: float64(c.SubTotal) / 100,
		Tax:      float64(c.Tax) / 100,
		Total:    float64(c.Total) / 100,
	})
}

// NewCart returns an empty cart in the building state
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:    userID,
		Status:    enum.CartStatusBuilding,
		Items:     []CartItem{},
		UpdatedAt: time.Now(),
	}
}

// Clone returns a deep copy of the cart. The service hands clones to
// callers so serialization never reads a cart that another request is
// mutating under the store lock.
func (c *Cart) Clone() *Cart {
	copied := *c
	copied.Items = make([]CartItem, len(c.Items))
	copy(copied.Items, c.Items)
	if c.Customer != nil {
		customer := *c.Customer
		copied.Customer = &customer
	}
	return &copied
}

// ItemIndex returns the position of the line for the given product, or -1
func (c *Cart) ItemIndex(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalItems returns the summed quantity across all lines
func (c *Cart) TotalItems() int {
	n := 0
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

// Recalculate recomputes every line total and the cart totals from scratch.
// taxRatePercent is the configured rate (e.g. 7 for 7%). Must be called
// after every mutation; totals are never carried over between evaluations.
func (c *Cart) Recalculate(taxRatePercent float64) {
	var subTotal int64
	for i := range c.Items {
		c.Items[i].Total = c.Items[i].UnitPrice * int64(c.Items[i].Quantity)
		subTotal += c.Items[i].Total
	}
	c.SubTotal = subTotal
	c.Tax = int64(math.Round(float64(subTotal) * taxRatePercent / 100))
	c.Total = c.SubTotal + c.Tax
	c.UpdatedAt = time.Now()
}

// Reset returns the cart to a pristine building state, dropping all lines,
// the customer, payment fields and notes.
func (c *Cart) Reset() {
	c.Status = enum.CartStatusBuilding
	c.Items = []CartItem{}
	c.Customer = nil
	c.PaymentMethod = ""
	c.Paid = 0
	c.Notes = ""
	c.SubTotal = 0
	c.Tax = 0
	c.Total = 0
	c.UpdatedAt = time.Now()
}
