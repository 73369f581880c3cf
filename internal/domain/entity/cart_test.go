package entity

import (
	"testing"

	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCartRecalculate(t *testing.T) {
	c := NewCart(uuid.New())
	c.Items = []CartItem{
		{ProductID: uuid.New(), Name: "Rice 2kg", UnitPrice: 1000, Quantity: 1},
		{ProductID: uuid.New(), Name: "Bread", UnitPrice: 500, Quantity: 2},
	}

	c.Recalculate(7.0)

	assert.Equal(t, int64(1000), c.Items[0].Total)
	assert.Equal(t, int64(1000), c.Items[1].Total)
	assert.Equal(t, int64(2000), c.SubTotal)
	assert.Equal(t, int64(140), c.Tax)
	assert.Equal(t, int64(2140), c.Total)
}

func TestCartRecalculateRoundsTax(t *testing.T) {
	c := NewCart(uuid.New())
	c.Items = []CartItem{
		{ProductID: uuid.New(), Name: "Gift Basket", UnitPrice: 4673, Quantity: 1},
	}

	// 7% of 46.73 is 3.2711, rounds to 3.27
	c.Recalculate(7.0)

	assert.Equal(t, int64(327), c.Tax)
	assert.Equal(t, int64(5000), c.Total)
}

func TestCartRecalculateNeverCarriesStaleTotals(t *testing.T) {
	c := NewCart(uuid.New())
	c.Items = []CartItem{
		{ProductID: uuid.New(), Name: "Bread", UnitPrice: 500, Quantity: 2},
	}
	c.Recalculate(7.0)

	c.Items = nil
	c.Recalculate(7.0)

	assert.Equal(t, int64(0), c.SubTotal)
	assert.Equal(t, int64(0), c.Tax)
	assert.Equal(t, int64(0), c.Total)
}

func TestCartItemIndex(t *testing.T) {
	known := uuid.New()
	c := NewCart(uuid.New())
	c.Items = []CartItem{
		{ProductID: uuid.New(), Name: "Bread", UnitPrice: 500, Quantity: 1},
		{ProductID: known, Name: "Milk", UnitPrice: 700, Quantity: 1},
	}

	assert.Equal(t, 1, c.ItemIndex(known))
	assert.Equal(t, -1, c.ItemIndex(uuid.New()))
}

func TestCartTotalItems(t *testing.T) {
	c := NewCart(uuid.New())
	assert.Equal(t, 0, c.TotalItems())

	c.Items = []CartItem{
		{ProductID: uuid.New(), Quantity: 2},
		{ProductID: uuid.New(), Quantity: 3},
	}
	assert.Equal(t, 5, c.TotalItems())
}

func TestCartClone(t *testing.T) {
	c := NewCart(uuid.New())
	c.Items = []CartItem{{ProductID: uuid.New(), Name: "Bread", UnitPrice: 500, Quantity: 1}}
	c.Customer = &Customer{ID: uuid.New(), Name: "Jane"}
	c.Recalculate(7.0)

	clone := c.Clone()
	clone.Items[0].Quantity = 5
	clone.Customer.Name = "changed"
	clone.Paid = 9999

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, "Jane", c.Customer.Name)
	assert.Equal(t, int64(0), c.Paid)
}

func TestCartReset(t *testing.T) {
	c := NewCart(uuid.New())
	c.Items = []CartItem{{ProductID: uuid.New(), Name: "Bread", UnitPrice: 500, Quantity: 1}}
	c.Customer = &Customer{ID: uuid.New(), Name: "Jane"}
	c.PaymentMethod = "cash"
	c.Paid = 500
	c.Notes = "deliver later"
	c.Status = enum.CartStatusCompleted
	c.Recalculate(7.0)

	c.Reset()

	assert.Equal(t, enum.CartStatusBuilding, c.Status)
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Customer)
	assert.Equal(t, "", c.PaymentMethod)
	assert.Equal(t, int64(0), c.Paid)
	assert.Equal(t, "", c.Notes)
	assert.Equal(t, int64(0), c.Total)
}
