package service

import (
	"context"
	"testing"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSale(t *testing.T, saleRepo *fakeSaleRepo, product *entity.Product, paid int64) *entity.Sale {
	t.Helper()

	sale := &entity.Sale{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		CustomerID:    uuid.New(),
		InvoiceNo:     "INV-TEST0001",
		Status:        enum.SaleStatusComplete,
		TotalItems:    2,
		SubTotal:      2000,
		Tax:           140,
		Total:         2140,
		PaymentMethod: "cash",
		Paid:          paid,
		Due:           2140 - paid,
		PaymentStatus: enum.DerivePaymentStatus(paid, 2140),
		Items: []entity.SaleItem{
			{ProductID: product.ID, ProductName: product.Name, Quantity: 2, UnitPrice: 1000, Total: 2000},
		},
	}
	require.NoError(t, saleRepo.Create(context.Background(), sale))
	return sale
}

func TestCancelSaleRestoresStock(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 3)
	productRepo := newFakeProductRepo(p)
	saleRepo := newFakeSaleRepo()
	svc := NewSaleService(saleRepo, productRepo)

	sale := seedSale(t, saleRepo, p, 500)

	cancelled, err := svc.CancelSale(ctx, sale.ID)
	require.NoError(t, err)

	assert.Equal(t, enum.SaleStatusCancel, cancelled.Status)
	assert.Equal(t, 5, productRepo.products[p.ID].Stock)
}

func TestCancelSaleTwiceRejected(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 3)
	productRepo := newFakeProductRepo(p)
	saleRepo := newFakeSaleRepo()
	svc := NewSaleService(saleRepo, productRepo)

	sale := seedSale(t, saleRepo, p, 500)

	_, err := svc.CancelSale(ctx, sale.ID)
	require.NoError(t, err)

	_, err = svc.CancelSale(ctx, sale.ID)
	require.Error(t, err)
	assert.Equal(t, "Sale is already cancelled", err.Error())

	// Stock restored exactly once
	assert.Equal(t, 5, productRepo.products[p.ID].Stock)
}

func TestCancelFullyPaidSaleRejected(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 3)
	saleRepo := newFakeSaleRepo()
	svc := NewSaleService(saleRepo, newFakeProductRepo(p))

	sale := seedSale(t, saleRepo, p, 2140)

	_, err := svc.CancelSale(ctx, sale.ID)
	require.Error(t, err)
	assert.Equal(t, "A fully paid sale cannot be cancelled", err.Error())
}

func TestPayDueRederivesStatus(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 3)
	saleRepo := newFakeSaleRepo()
	svc := NewSaleService(saleRepo, newFakeProductRepo(p))

	sale := seedSale(t, saleRepo, p, 500)

	updated, err := svc.PayDue(ctx, sale.ID, 640)
	require.NoError(t, err)
	assert.Equal(t, int64(1140), updated.Paid)
	assert.Equal(t, int64(1000), updated.Due)
	assert.Equal(t, enum.PaymentStatusPartial, updated.PaymentStatus)

	updated, err = svc.PayDue(ctx, sale.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Due)
	assert.Equal(t, enum.PaymentStatusPaid, updated.PaymentStatus)
}

func TestPayDueValidation(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 3)
	saleRepo := newFakeSaleRepo()
	svc := NewSaleService(saleRepo, newFakeProductRepo(p))

	sale := seedSale(t, saleRepo, p, 500)

	_, err := svc.PayDue(ctx, sale.ID, 0)
	require.Error(t, err)
	assert.Equal(t, "Payment amount must be positive", err.Error())

	_, err = svc.PayDue(ctx, sale.ID, 5000)
	require.Error(t, err)
	assert.Equal(t, "Payment exceeds the outstanding balance", err.Error())

	settled := seedSale(t, saleRepo, p, 2140)
	_, err = svc.PayDue(ctx, settled.ID, 100)
	require.Error(t, err)
	assert.Equal(t, "Sale has no outstanding balance", err.Error())
}
