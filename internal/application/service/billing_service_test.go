package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/dukahub/pos-api/internal/config"
	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type billingFixture struct {
	svc           *BillingService
	productRepo   *fakeProductRepo
	customerRepo  *fakeCustomerRepo
	saleRepo      *fakeSaleRepo
	notifications *fakeNotificationRepo
	userID        uuid.UUID
	customer      *entity.Customer
}

func newBillingFixture(t *testing.T, products ...*entity.Product) *billingFixture {
	t.Helper()

	userID := uuid.New()
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane Wanjiku", Email: "jane@example.com", Phone: "0712345678"}

	productRepo := newFakeProductRepo(products...)
	customerRepo := newFakeCustomerRepo(customer)
	saleRepo := newFakeSaleRepo()
	notificationRepo := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo(&entity.User{ID: userID, Name: "Ali Hassan", Email: "ali@dukahub.io"})

	svc := NewBillingService(
		productRepo,
		customerRepo,
		saleRepo,
		notificationRepo,
		newFakeSettingsRepo(),
		userRepo,
		config.BillingConfig{TaxRatePercent: 7.0, LowStockThreshold: 5, Currency: "KES"},
	)

	return &billingFixture{
		svc:           svc,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		saleRepo:      saleRepo,
		notifications: notificationRepo,
		userID:        userID,
		customer:      customer,
	}
}

func newProduct(name string, priceCents int64, stock int) *entity.Product {
	return &entity.Product{ID: uuid.New(), Name: name, Barcode: uuid.NewString(), Price: priceCents, Stock: stock}
}

func errorMap(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.ErrorMap()
}

func TestAddItemOutOfStockProduct(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Sugar 1kg", 1000, 0)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)

	m := errorMap(t, err)
	assert.Equal(t, "Sugar 1kg is out of stock", m["cart"])

	cart := f.svc.GetCart(ctx, f.userID)
	assert.True(t, cart.IsEmpty())
}

func TestAddItemIncrementBoundedByStock(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Milk 500ml", 500, 2)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	cart, err := f.svc.AddItem(ctx, f.userID, p.ID)
	m := errorMap(t, err)
	assert.Equal(t, "Only 2 units of Milk 500ml available", m["cart"])
	assert.Nil(t, cart)

	cart = f.svc.GetCart(ctx, f.userID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItemUnknownProduct(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.AddItem(context.Background(), f.userID, uuid.New())

	require.Error(t, err)
	assert.Equal(t, "Product not found", err.Error())
}

func TestCartTotals(t *testing.T) {
	ctx := context.Background()
	p1 := newProduct("Rice 2kg", 1000, 5)
	p2 := newProduct("Bread", 500, 4)
	f := newBillingFixture(t, p1, p2)

	_, err := f.svc.AddItem(ctx, f.userID, p1.ID)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.userID, p2.ID)
	require.NoError(t, err)
	cart, err := f.svc.AddItem(ctx, f.userID, p2.ID)
	require.NoError(t, err)

	// 10.00 + 2 x 5.00 = 20.00 subtotal, 7% tax = 1.40, total 21.40
	assert.Equal(t, int64(2000), cart.SubTotal)
	assert.Equal(t, int64(140), cart.Tax)
	assert.Equal(t, int64(2140), cart.Total)
	assert.Equal(t, 3, cart.TotalItems())
}

func TestUpdateQuantityZeroIsNoop(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Tea Bags", 300, 10)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	cart, err := f.svc.UpdateQuantity(ctx, f.userID, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestUpdateQuantityAboveStockRejectedWithoutMutation(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Cooking Oil", 2500, 3)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateQuantity(ctx, f.userID, p.ID, 4)
	m := errorMap(t, err)
	assert.Equal(t, "Only 3 units of Cooking Oil available", m["cart"])

	cart := f.svc.GetCart(ctx, f.userID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Soap", 150, 10)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	cart, err := f.svc.RemoveItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, int64(0), cart.Total)

	// Removing again must not error or change anything
	cart, err = f.svc.RemoveItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCreateCustomerCollectsAllFieldErrors(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.CreateCustomer(context.Background(), f.userID, "", "", "")

	m := errorMap(t, err)
	assert.Len(t, m, 3)
	assert.Equal(t, "Name is required", m["name"])
	assert.Equal(t, "Email is required", m["email"])
	assert.Equal(t, "Phone is required", m["phone"])
}

func TestCreateCustomerRejectsInvalidEmail(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.CreateCustomer(context.Background(), f.userID, "John Otieno", "not-an-email", "0700000000")

	m := errorMap(t, err)
	assert.Equal(t, "Email is not valid", m["email"])
	assert.Len(t, m, 1)
}

func TestCreateCustomerRejectsDuplicateEmail(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.CreateCustomer(context.Background(), f.userID, "Jane Again", f.customer.Email, "0700000000")

	m := errorMap(t, err)
	assert.Equal(t, "A customer with this email already exists", m["email"])
}

func TestCreateCustomerSelectsOnCart(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	cart, err := f.svc.CreateCustomer(ctx, f.userID, "Peter Kimani", "peter@example.com", "0711111111")
	require.NoError(t, err)
	require.NotNil(t, cart.Customer)
	assert.Equal(t, "Peter Kimani", cart.Customer.Name)

	stored, err := f.customerRepo.GetByEmail(ctx, "peter@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestSetPaymentOverpaymentRejectedKeepsPriorValue(t *testing.T) {
	ctx := context.Background()
	// 46.73 subtotal, 7% tax rounds to 3.27, total exactly 50.00
	p := newProduct("Gift Basket", 4673, 10)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 1000)
	require.NoError(t, err)

	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 6000)
	m := errorMap(t, err)
	assert.Contains(t, m["paidAmount"], "50.00")

	cart := f.svc.GetCart(ctx, f.userID)
	assert.Equal(t, int64(1000), cart.Paid)
}

func TestCheckoutValidationCollectsEveryError(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	// Payment method set, amount negative; no customer; empty cart.
	_, err := f.svc.SetPayment(ctx, f.userID, "cash", -100)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.userID)

	m := errorMap(t, err)
	assert.Len(t, m, 3)
	assert.Equal(t, "Please select or create a customer", m["customer"])
	assert.Equal(t, "Cart is empty", m["cart"])
	assert.Equal(t, "Paid amount cannot be negative", m["paidAmount"])
}

func TestCheckoutRequiresPaymentMethod(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Notebook", 200, 10)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.userID)

	m := errorMap(t, err)
	assert.Equal(t, "Please select a payment method", m["payment"])
}

func TestCheckoutHappyPath(t *testing.T) {
	ctx := context.Background()
	p1 := newProduct("Rice 2kg", 1000, 5)
	p2 := newProduct("Bread", 500, 2)
	f := newBillingFixture(t, p1, p2)

	_, err := f.svc.AddItem(ctx, f.userID, p1.ID)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.userID, p2.ID)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.userID, p2.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 2140)
	require.NoError(t, err)

	receipt, err := f.svc.Checkout(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.True(t, strings.HasPrefix(receipt.InvoiceNo, "INV-"), "invoice no %q", receipt.InvoiceNo)
	assert.Equal(t, "Jane Wanjiku", receipt.Customer)
	assert.Equal(t, "Ali Hassan", receipt.Cashier)
	assert.Equal(t, 20.00, receipt.SubTotal)
	assert.Equal(t, 1.40, receipt.Tax)
	assert.Equal(t, 21.40, receipt.Total)
	assert.Equal(t, 21.40, receipt.Paid)
	assert.Equal(t, 0.00, receipt.Due)
	assert.Equal(t, "paid", receipt.PaymentStatus)
	require.Len(t, receipt.Items, 2)

	// Stock decremented atomically
	assert.Equal(t, 4, f.productRepo.products[p1.ID].Stock)
	assert.Equal(t, 0, f.productRepo.products[p2.ID].Stock)

	// Sale and line items recorded
	require.Len(t, f.saleRepo.sales, 1)
	for _, sale := range f.saleRepo.sales {
		assert.Equal(t, enum.SaleStatusComplete, sale.Status)
		assert.Equal(t, enum.PaymentStatusPaid, sale.PaymentStatus)
		assert.Equal(t, int64(2140), sale.Total)
		assert.Equal(t, int64(0), sale.Due)
		assert.Equal(t, 3, sale.TotalItems)
	}
	assert.Len(t, f.saleRepo.items, 2)

	// Cart reset for the next sale
	cart := f.svc.GetCart(ctx, f.userID)
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.Customer)
	assert.Equal(t, enum.CartStatusBuilding, cart.Status)
	assert.Equal(t, "", cart.PaymentMethod)
	assert.Equal(t, int64(0), cart.Paid)
}

func TestCheckoutPartialPaymentDerivesStatus(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Rice 2kg", 1000, 10)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "mpesa", 500)
	require.NoError(t, err)

	receipt, err := f.svc.Checkout(ctx, f.userID)
	require.NoError(t, err)

	assert.Equal(t, "partial", receipt.PaymentStatus)
	assert.Equal(t, 5.00, receipt.Paid)
	assert.Equal(t, 5.70, receipt.Due)
}

func TestCheckoutInsufficientStockPreservesCart(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 3)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 0)
	require.NoError(t, err)

	// Stock drained by another terminal between add and checkout
	f.productRepo.products[p.ID].Stock = 0

	_, err = f.svc.Checkout(ctx, f.userID)
	m := errorMap(t, err)
	assert.Equal(t, "Insufficient stock for Bread", m["cart"])

	// Nothing recorded, cart contents intact
	assert.Empty(t, f.saleRepo.sales)
	cart := f.svc.GetCart(ctx, f.userID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	require.NotNil(t, cart.Customer)

	// A failed cart accepts mutations again
	f.productRepo.products[p.ID].Stock = 3
	_, err = f.svc.UpdateQuantity(ctx, f.userID, p.ID, 2)
	require.NoError(t, err)
}

func TestCheckoutSaleWriteFailureRestoresStock(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 3)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 0)
	require.NoError(t, err)

	f.saleRepo.createErr = assert.AnError

	_, err = f.svc.Checkout(ctx, f.userID)
	m := errorMap(t, err)
	assert.Equal(t, "Failed to record the sale, please try again", m["general"])

	// Decrement rolled back
	assert.Equal(t, 3, f.productRepo.products[p.ID].Stock)
}

func TestCheckoutCreatesLowStockNotifications(t *testing.T) {
	ctx := context.Background()
	p1 := newProduct("Rice 2kg", 1000, 5) // drops to 4, below threshold 5
	p2 := newProduct("Bread", 500, 1)     // drops to 0
	p3 := newProduct("Salt", 100, 20)     // stays well stocked
	f := newBillingFixture(t, p1, p2, p3)

	for _, p := range []*entity.Product{p1, p2, p3} {
		_, err := f.svc.AddItem(ctx, f.userID, p.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 0)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.userID)
	require.NoError(t, err)

	require.Len(t, f.notifications.notifications, 2)
	byTitle := make(map[string]entity.Notification)
	for _, n := range f.notifications.notifications {
		byTitle[n.Title] = n
	}

	low, ok := byTitle["Low stock"]
	require.True(t, ok)
	assert.Equal(t, enum.NotificationSeverityWarning, low.Severity)
	assert.Equal(t, "Rice 2kg has 4 units remaining", low.Message)

	out, ok := byTitle["Out of stock"]
	require.True(t, ok)
	assert.Equal(t, enum.NotificationSeverityError, out.Severity)
	assert.Equal(t, "Bread is out of stock", out.Message)
}

func TestCheckoutSkipsNotificationsWhenAlertsDisabled(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 1)
	f := newBillingFixture(t, p)

	settingsRepo := f.svc.settingsRepo.(*fakeSettingsRepo)
	settingsRepo.settings[f.userID] = &entity.UserSettings{UserID: f.userID, LowStockAlerts: false}

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 0)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.userID)
	require.NoError(t, err)

	assert.Empty(t, f.notifications.notifications)
}

func TestStartNewSaleDiscardsCart(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 3)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)

	cart, err := f.svc.StartNewSale(ctx, f.userID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.Customer)
	assert.Equal(t, enum.CartStatusBuilding, cart.Status)
}

func TestCartReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 10)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	before := f.svc.GetCart(ctx, f.userID)

	// Later mutations must not show up in a previously returned cart
	_, err = f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	require.Len(t, before.Items, 1)
	assert.Equal(t, 1, before.Items[0].Quantity)
	assert.Equal(t, int64(535), before.Total)

	// And mutating a returned cart must not touch the service's state
	before.Items[0].Quantity = 99
	before.PaymentMethod = "scribbled"
	current := f.svc.GetCart(ctx, f.userID)
	assert.Equal(t, 2, current.Items[0].Quantity)
	assert.Equal(t, "", current.PaymentMethod)
}

func TestCartSerializationSafeDuringMutation(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 1000)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AddItem(ctx, f.userID, p.ID)
		}()
		go func() {
			defer wg.Done()
			_, err := json.Marshal(f.svc.GetCart(ctx, f.userID))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestCheckoutItemWriteFailureLeavesNoSale(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 3)
	f := newBillingFixture(t, p)

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectCustomer(ctx, f.userID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.SetPayment(ctx, f.userID, "cash", 0)
	require.NoError(t, err)

	f.saleRepo.createItemsErr = assert.AnError

	_, err = f.svc.Checkout(ctx, f.userID)
	m := errorMap(t, err)
	assert.Equal(t, "Failed to record the sale, please try again", m["general"])

	// Neither a sale row nor items survive the failed transaction
	assert.Empty(t, f.saleRepo.sales)
	assert.Empty(t, f.saleRepo.items)
	assert.Equal(t, 3, f.productRepo.products[p.ID].Stock)
}

func TestCreateCustomerDuplicateInsertReportsEmailConflict(t *testing.T) {
	f := newBillingFixture(t)

	// Another terminal inserted the same email between the lookup and
	// the insert; the unique index violation must still land on "email".
	f.customerRepo.createErr = repository.ErrDuplicate

	_, err := f.svc.CreateCustomer(context.Background(), f.userID, "John Otieno", "john@example.com", "0700000000")

	m := errorMap(t, err)
	assert.Equal(t, "A customer with this email already exists", m["email"])
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	p := newProduct("Bread", 500, 10)
	f := newBillingFixture(t, p)
	otherUser := uuid.New()

	_, err := f.svc.AddItem(ctx, f.userID, p.ID)
	require.NoError(t, err)

	other := f.svc.GetCart(ctx, otherUser)
	assert.True(t, other.IsEmpty())
}
