package service

import (
	"context"
	"strings"
	"testing"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	svc           *PurchaseService
	productRepo   *fakeProductRepo
	purchaseRepo  *fakePurchaseRepo
	notifications *fakeNotificationRepo
	supplier      *entity.Supplier
	userID        uuid.UUID
}

func newPurchaseFixture(t *testing.T, products ...*entity.Product) *purchaseFixture {
	t.Helper()

	supplier := &entity.Supplier{ID: uuid.New(), Name: "Mombasa Wholesalers"}
	productRepo := newFakeProductRepo(products...)
	purchaseRepo := newFakePurchaseRepo()
	notificationRepo := &fakeNotificationRepo{}

	svc := NewPurchaseService(
		purchaseRepo,
		&fakePurchaseDetailRepo{},
		productRepo,
		newFakeSupplierRepo(supplier),
		notificationRepo,
	)

	return &purchaseFixture{
		svc:           svc,
		productRepo:   productRepo,
		purchaseRepo:  purchaseRepo,
		notifications: notificationRepo,
		supplier:      supplier,
		userID:        uuid.New(),
	}
}

func TestCreatePurchaseDerivesPaymentStatus(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 10)
	f := newPurchaseFixture(t, p)

	purchase, err := f.svc.CreatePurchase(ctx, &CreatePurchaseInput{
		UserID:     f.userID,
		SupplierID: &f.supplier.ID,
		Lines: []PurchaseLineInput{
			{ProductID: p.ID, Quantity: 10, UnitCost: 800},
		},
		Tax:  560,
		Paid: 4000,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(purchase.PurchaseNo, "PUR-"))
	assert.Equal(t, enum.PurchaseStatusPending, purchase.Status)
	assert.Equal(t, int64(8000), purchase.SubTotal)
	assert.Equal(t, int64(8560), purchase.Total)
	assert.Equal(t, enum.PaymentStatusPartial, purchase.PaymentStatus)

	// Pending purchases never touch stock
	assert.Equal(t, 10, f.productRepo.products[p.ID].Stock)
}

func TestCreatePurchaseRejectsEmptyLines(t *testing.T) {
	f := newPurchaseFixture(t)

	_, err := f.svc.CreatePurchase(context.Background(), &CreatePurchaseInput{UserID: f.userID})

	require.Error(t, err)
	assert.Equal(t, "Purchase must have at least one line", err.Error())
}

func TestCreatePurchaseRejectsOverpayment(t *testing.T) {
	p := newProduct("Rice 2kg", 1000, 10)
	f := newPurchaseFixture(t, p)

	_, err := f.svc.CreatePurchase(context.Background(), &CreatePurchaseInput{
		UserID: f.userID,
		Lines:  []PurchaseLineInput{{ProductID: p.ID, Quantity: 1, UnitCost: 1000}},
		Paid:   2000,
	})

	require.Error(t, err)
	assert.Equal(t, "Paid amount must be between zero and the purchase total", err.Error())
}

func TestApprovePurchaseReplenishesStock(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 2)
	f := newPurchaseFixture(t, p)

	purchase, err := f.svc.CreatePurchase(ctx, &CreatePurchaseInput{
		UserID: f.userID,
		Lines:  []PurchaseLineInput{{ProductID: p.ID, Quantity: 10, UnitCost: 800}},
	})
	require.NoError(t, err)

	approved, err := f.svc.ApprovePurchase(ctx, purchase.ID)
	require.NoError(t, err)

	assert.Equal(t, enum.PurchaseStatusApproved, approved.Status)
	assert.Equal(t, 12, f.productRepo.products[p.ID].Stock)

	require.Len(t, f.notifications.notifications, 1)
	assert.Equal(t, "Purchase approved", f.notifications.notifications[0].Title)
	assert.Equal(t, f.userID, f.notifications.notifications[0].UserID)
}

func TestApprovePurchaseTwiceRejected(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 2)
	f := newPurchaseFixture(t, p)

	purchase, err := f.svc.CreatePurchase(ctx, &CreatePurchaseInput{
		UserID: f.userID,
		Lines:  []PurchaseLineInput{{ProductID: p.ID, Quantity: 10, UnitCost: 800}},
	})
	require.NoError(t, err)

	_, err = f.svc.ApprovePurchase(ctx, purchase.ID)
	require.NoError(t, err)

	_, err = f.svc.ApprovePurchase(ctx, purchase.ID)
	require.Error(t, err)
	assert.Equal(t, "Purchase is already approved", err.Error())

	// Stock applied exactly once
	assert.Equal(t, 12, f.productRepo.products[p.ID].Stock)
}

func TestDeleteApprovedPurchaseRejected(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 2)
	f := newPurchaseFixture(t, p)

	purchase, err := f.svc.CreatePurchase(ctx, &CreatePurchaseInput{
		UserID: f.userID,
		Lines:  []PurchaseLineInput{{ProductID: p.ID, Quantity: 10, UnitCost: 800}},
	})
	require.NoError(t, err)

	_, err = f.svc.ApprovePurchase(ctx, purchase.ID)
	require.NoError(t, err)

	err = f.svc.DeletePurchase(ctx, purchase.ID)
	require.Error(t, err)
	assert.Equal(t, "An approved purchase cannot be deleted", err.Error())
}

func TestDeletePendingPurchase(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 2)
	f := newPurchaseFixture(t, p)

	purchase, err := f.svc.CreatePurchase(ctx, &CreatePurchaseInput{
		UserID: f.userID,
		Lines:  []PurchaseLineInput{{ProductID: p.ID, Quantity: 10, UnitCost: 800}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePurchase(ctx, purchase.ID))

	got, err := f.purchaseRepo.GetByID(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
