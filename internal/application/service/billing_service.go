package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dukahub/pos-api/internal/config"
	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/dukahub/pos-api/pkg/utils"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BillingService owns the active sale cart for each authenticated user and
// drives it through the checkout flow. Carts live in memory only; the
// database is touched when a sale is submitted.
type BillingService struct {
	productRepo      repository.ProductRepository
	customerRepo     repository.CustomerRepository
	saleRepo         repository.SaleRepository
	notificationRepo repository.NotificationRepository
	settingsRepo     repository.SettingsRepository
	userRepo         repository.UserRepository
	billingCfg       config.BillingConfig

	mu    sync.Mutex
	carts map[uuid.UUID]*entity.Cart
}

// NewBillingService creates a new billing service
func NewBillingService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	notificationRepo repository.NotificationRepository,
	settingsRepo repository.SettingsRepository,
	userRepo repository.UserRepository,
	billingCfg config.BillingConfig,
) *BillingService {
	return &BillingService{
		productRepo:      productRepo,
		customerRepo:     customerRepo,
		saleRepo:         saleRepo,
		notificationRepo: notificationRepo,
		settingsRepo:     settingsRepo,
		userRepo:         userRepo,
		billingCfg:       billingCfg,
		carts:            make(map[uuid.UUID]*entity.Cart),
	}
}

// cart returns the user's cart, creating an empty one lazily.
// Callers must hold s.mu.
func (s *BillingService) cart(userID uuid.UUID) *entity.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = entity.NewCart(userID)
		s.carts[userID] = c
	}
	return c
}

// guardMutable rejects cart mutations while a checkout is in flight and
// returns a previously failed cart to the building state.
func guardMutable(c *entity.Cart) error {
	if c.Status == enum.CartStatusSubmitting {
		return apperror.NewConflictError("A sale is currently being submitted")
	}
	c.Status = enum.CartStatusBuilding
	return nil
}

// GetCart returns a copy of the user's current cart
func (s *BillingService) GetCart(ctx context.Context, userID uuid.UUID) *entity.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart(userID).Clone()
}

// AddItem adds one unit of the product to the cart. Adding a product already
// in the cart increments its quantity, bounded by the product's stock.
func (s *BillingService) AddItem(ctx context.Context, userID, productID uuid.UUID) (*entity.Cart, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	if product.Stock <= 0 {
		return nil, apperror.NewFieldError("cart", fmt.Sprintf("%s is out of stock", product.Name))
	}

	if idx := c.ItemIndex(productID); idx >= 0 {
		if c.Items[idx].Quantity+1 > product.Stock {
			return nil, apperror.NewFieldError("cart",
				fmt.Sprintf("Only %d units of %s available", product.Stock, product.Name))
		}
		c.Items[idx].Quantity++
	} else {
		c.Items = append(c.Items, entity.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
		})
	}

	c.Recalculate(s.billingCfg.TaxRatePercent)
	return c.Clone(), nil
}

// UpdateQuantity sets a cart line to the given quantity. A quantity of zero
// or less is a no-op; a quantity above the product's current stock is
// rejected without mutation.
func (s *BillingService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*entity.Cart, error) {
	if quantity <= 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cart(userID).Clone(), nil
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	idx := c.ItemIndex(productID)
	if idx < 0 {
		return nil, apperror.NewNotFoundError("Cart item")
	}

	if quantity > product.Stock {
		return nil, apperror.NewFieldError("cart",
			fmt.Sprintf("Only %d units of %s available", product.Stock, product.Name))
	}

	c.Items[idx].Quantity = quantity
	c.Recalculate(s.billingCfg.TaxRatePercent)
	return c.Clone(), nil
}

// RemoveItem removes a cart line. Removing a line that is not in the cart
// is a no-op.
func (s *BillingService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	if idx := c.ItemIndex(productID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		c.Recalculate(s.billingCfg.TaxRatePercent)
	}
	return c.Clone(), nil
}

// SelectCustomer attaches an existing customer to the cart
func (s *BillingService) SelectCustomer(ctx context.Context, userID, customerID uuid.UUID) (*entity.Cart, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	c.Customer = customer
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

// ClearCustomer detaches the customer from the cart
func (s *BillingService) ClearCustomer(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	c.Customer = nil
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

// CreateCustomer creates a customer inline during billing and selects it on
// the cart. All field validations are evaluated and collected before any
// persistence happens.
func (s *BillingService) CreateCustomer(ctx context.Context, userID uuid.UUID, name, email, phone string) (*entity.Cart, error) {
	var fieldErrors []apperror.FieldError

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if email == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: "Email is required"})
	} else if !emailPattern.MatchString(email) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: "Email is not valid"})
	}
	if phone == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "phone", Message: "Phone is required"})
	}

	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existing, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "email", Message: "A customer with this email already exists"},
		})
	}

	customer := &entity.Customer{
		Name:  name,
		Email: email,
		Phone: phone,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		// Lost the race against a concurrent insert on the unique email index
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "email", Message: "A customer with this email already exists"},
			})
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	c.Customer = customer
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

// SetPayment records the payment method and paid amount (cents) on the cart.
// An amount above the current total is rejected before any mutation and the
// prior value is kept. Negative amounts are stored; checkout reports them.
func (s *BillingService) SetPayment(ctx context.Context, userID uuid.UUID, method string, paid int64) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	if paid > c.Total {
		return nil, apperror.NewFieldError("paidAmount",
			fmt.Sprintf("Paid amount cannot exceed the total of %.2f", float64(c.Total)/100))
	}

	c.PaymentMethod = method
	c.Paid = paid
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

// SetNotes records free-form notes on the cart
func (s *BillingService) SetNotes(ctx context.Context, userID uuid.UUID, notes string) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if err := guardMutable(c); err != nil {
		return nil, err
	}

	c.Notes = notes
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

// StartNewSale discards the cart contents and returns a fresh building cart
func (s *BillingService) StartNewSale(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if c.Status == enum.CartStatusSubmitting {
		return nil, apperror.NewConflictError("A sale is currently being submitted")
	}

	c.Reset()
	return c.Clone(), nil
}

// validateCart runs the full pre-submission check, collecting one error per
// failing condition. It never short-circuits.
func validateCart(c *entity.Cart) []apperror.FieldError {
	var fieldErrors []apperror.FieldError

	if c.Customer == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "customer", Message: "Please select or create a customer",
		})
	}
	if c.IsEmpty() {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "cart", Message: "Cart is empty",
		})
	}
	if c.PaymentMethod == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "payment", Message: "Please select a payment method",
		})
	}
	if c.Paid < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "paidAmount", Message: "Paid amount cannot be negative",
		})
	} else if c.Paid > c.Total {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "paidAmount",
			Message: fmt.Sprintf("Paid amount cannot exceed the total of %.2f", float64(c.Total)/100),
		})
	}

	return fieldErrors
}

// Checkout validates the cart, atomically decrements stock, records the sale
// and returns a receipt built from the recorded values. On any failure the
// cart contents are preserved so the user can correct and retry.
func (s *BillingService) Checkout(ctx context.Context, userID uuid.UUID) (*entity.Receipt, error) {
	s.mu.Lock()
	c := s.cart(userID)

	if c.Status == enum.CartStatusSubmitting {
		s.mu.Unlock()
		return nil, apperror.NewConflictError("A sale is currently being submitted")
	}

	c.Recalculate(s.billingCfg.TaxRatePercent)
	if fieldErrors := validateCart(c); len(fieldErrors) > 0 {
		c.Status = enum.CartStatusBuilding
		s.mu.Unlock()
		return nil, apperror.NewValidationError(fieldErrors)
	}

	c.Status = enum.CartStatusSubmitting
	snapshot := c.Clone()
	s.mu.Unlock()

	receipt, err := s.submit(ctx, userID, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		c.Status = enum.CartStatusFailed
		return nil, err
	}
	c.Status = enum.CartStatusCompleted
	c.Reset()
	return receipt, nil
}

// submit performs the database half of the checkout: conditional stock
// decrement, sale + item rows, low stock notifications, receipt assembly.
func (s *BillingService) submit(ctx context.Context, userID uuid.UUID, c *entity.Cart) (*entity.Receipt, error) {
	decrements := make(map[uuid.UUID]int, len(c.Items))
	for _, item := range c.Items {
		decrements[item.ProductID] = item.Quantity
	}

	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, decrements)
	if err != nil {
		return nil, apperror.NewFieldError("general", "Failed to complete the sale, please try again")
	}
	if len(failedIDs) > 0 {
		fieldErrors := make([]apperror.FieldError, 0, len(failedIDs))
		for _, id := range failedIDs {
			name := id.String()
			if idx := c.ItemIndex(id); idx >= 0 {
				name = c.Items[idx].Name
			}
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: "cart", Message: fmt.Sprintf("Insufficient stock for %s", name),
			})
		}
		return nil, apperror.NewValidationError(fieldErrors)
	}

	sale := &entity.Sale{
		UserID:        userID,
		CustomerID:    c.Customer.ID,
		InvoiceNo:     utils.GenerateInvoiceNo(),
		SaleDate:      time.Now(),
		Status:        enum.SaleStatusComplete,
		TotalItems:    c.TotalItems(),
		SubTotal:      c.SubTotal,
		Tax:           c.Tax,
		Discount:      0,
		Total:         c.Total,
		PaymentMethod: c.PaymentMethod,
		Paid:          c.Paid,
		Due:           c.Total - c.Paid,
		PaymentStatus: enum.DerivePaymentStatus(c.Paid, c.Total),
	}
	if c.Notes != "" {
		notes := c.Notes
		sale.Notes = &notes
	}

	items := make([]entity.SaleItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, entity.SaleItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		})
	}

	// One transaction for the sale and its items, so a failed item write
	// never leaves an orphan sale row behind.
	if err := s.saleRepo.CreateWithItems(ctx, sale, items); err != nil {
		s.restoreStock(ctx, decrements)
		return nil, apperror.NewFieldError("general", "Failed to record the sale, please try again")
	}

	s.notifyLowStock(ctx, userID, decrements)

	return s.buildReceipt(ctx, sale, c, items), nil
}

// restoreStock puts decremented units back after a failed submission
func (s *BillingService) restoreStock(ctx context.Context, decrements map[uuid.UUID]int) {
	if err := s.productRepo.AtomicIncrementBatch(ctx, decrements); err != nil {
		log.Printf("Failed to restore stock after failed sale: %v", err)
	}
}

// notifyLowStock records a notification for every sold product whose
// remaining stock fell below the configured threshold. Errors here never
// fail the sale.
func (s *BillingService) notifyLowStock(ctx context.Context, userID uuid.UUID, decrements map[uuid.UUID]int) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.Printf("Failed to load settings for low stock alerts: %v", err)
		return
	}
	if settings != nil && !settings.LowStockAlerts {
		return
	}

	ids := make([]uuid.UUID, 0, len(decrements))
	for id := range decrements {
		ids = append(ids, id)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("Failed to load products for low stock alerts: %v", err)
		return
	}

	var notifications []entity.Notification
	for _, p := range products {
		if p.Stock >= s.billingCfg.LowStockThreshold {
			continue
		}

		n := entity.Notification{
			UserID:   userID,
			Severity: enum.NotificationSeverityWarning,
			Title:    "Low stock",
			Message:  fmt.Sprintf("%s has %d units remaining", p.Name, p.Stock),
		}
		if p.Stock == 0 {
			n.Severity = enum.NotificationSeverityError
			n.Title = "Out of stock"
			n.Message = fmt.Sprintf("%s is out of stock", p.Name)
		}
		notifications = append(notifications, n)
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		log.Printf("Failed to record low stock notifications: %v", err)
	}
}

// buildReceipt composes the receipt from the recorded sale so every figure
// on it is server-authoritative.
func (s *BillingService) buildReceipt(ctx context.Context, sale *entity.Sale, c *entity.Cart, items []entity.SaleItem) *entity.Receipt {
	receipt := &entity.Receipt{
		InvoiceNo:     sale.InvoiceNo,
		Date:          sale.SaleDate.Format("02/01/2006 15:04"),
		Customer:      c.Customer.Name,
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: sale.PaymentStatus.String(),
		SubTotal:      float64(sale.SubTotal) / 100,
		Tax:           float64(sale.Tax) / 100,
		Discount:      float64(sale.Discount) / 100,
		Total:         float64(sale.Total) / 100,
		Paid:          float64(sale.Paid) / 100,
		Due:           float64(sale.Due) / 100,
	}

	for _, item := range items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: float64(item.UnitPrice) / 100,
			Total:     float64(item.Total) / 100,
		})
	}

	if cashier, err := s.userRepo.GetByID(ctx, sale.UserID); err == nil && cashier != nil {
		receipt.Cashier = cashier.Name
	}

	return receipt
}
