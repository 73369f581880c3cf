package service

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
)

// In-memory fakes shared by the service tests.

type fakeProductRepo struct {
	products     map[uuid.UUID]*entity.Product
	decrementErr error
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) Create(_ context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var result []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	var result []entity.Product
	for _, p := range r.products {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *fakeProductRepo) GetLowStock(_ context.Context, threshold int) ([]entity.Product, error) {
	var result []entity.Product
	for _, p := range r.products {
		if p.Stock < threshold {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) AtomicDecrementBatch(_ context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if r.decrementErr != nil {
		return nil, r.decrementErr
	}

	var failedIDs []uuid.UUID
	for id, amount := range decrements {
		p, ok := r.products[id]
		if !ok || p.Stock < amount {
			failedIDs = append(failedIDs, id)
		}
	}
	if len(failedIDs) > 0 {
		return failedIDs, nil
	}

	for id, amount := range decrements {
		r.products[id].Stock -= amount
	}
	return nil, nil
}

func (r *fakeProductRepo) AtomicIncrementBatch(_ context.Context, increments map[uuid.UUID]int) error {
	for id, amount := range increments {
		if p, ok := r.products[id]; ok {
			p.Stock += amount
		}
	}
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
	createErr error
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
	for _, c := range customers {
		repo.customers[c.ID] = c
	}
	return repo
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	if r.createErr != nil {
		return r.createErr
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *entity.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var result []entity.Customer
	for _, c := range r.customers {
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

type fakeSaleRepo struct {
	sales          map[uuid.UUID]*entity.Sale
	items          []entity.SaleItem
	createErr      error
	createItemsErr error
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*entity.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if r.createErr != nil {
		return r.createErr
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.sales[sale.ID] = sale
	return nil
}

func (r *fakeSaleRepo) CreateWithItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItem) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.createItemsErr != nil {
		// All-or-nothing: the failed item write persists neither row
		return r.createItemsErr
	}
	if err := r.Create(ctx, sale); err != nil {
		return err
	}
	for i := range items {
		items[i].SaleID = sale.ID
	}
	r.items = append(r.items, items...)
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSaleRepo) GetByInvoiceNo(_ context.Context, invoiceNo string) (*entity.Sale, error) {
	for _, s := range r.sales {
		if s.InvoiceNo == invoiceNo {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetWithItems(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	return r.GetByID(context.Background(), id)
}

func (r *fakeSaleRepo) Update(_ context.Context, sale *entity.Sale) error {
	r.sales[sale.ID] = sale
	return nil
}

func (r *fakeSaleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.SaleStatus) error {
	if s, ok := r.sales[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *fakeSaleRepo) List(_ context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	var result []entity.Sale
	for _, s := range r.sales {
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (r *fakeSaleRepo) GetDueSales(_ context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	var result []entity.Sale
	for _, s := range r.sales {
		if s.Due > 0 {
			result = append(result, *s)
		}
	}
	return result, int64(len(result)), nil
}

type fakeNotificationRepo struct {
	notifications []entity.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *entity.Notification) error {
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, notifications []entity.Notification) error {
	r.notifications = append(r.notifications, notifications...)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			return &r.notifications[i], nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, params *pagination.PaginationParams, unreadOnly bool) ([]entity.Notification, int64, error) {
	var result []entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			result = append(result, n)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
		}
	}
	return nil
}

type fakeSettingsRepo struct {
	settings map[uuid.UUID]*entity.UserSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[uuid.UUID]*entity.UserSettings)}
}

func (r *fakeSettingsRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*entity.UserSettings, error) {
	s, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSettingsRepo) Create(_ context.Context, settings *entity.UserSettings) error {
	r.settings[settings.UserID] = settings
	return nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, settings *entity.UserSettings) error {
	r.settings[settings.UserID] = settings
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	var result []entity.User
	for _, u := range r.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

type fakePurchaseRepo struct {
	purchases map[uuid.UUID]*entity.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[uuid.UUID]*entity.Purchase)}
}

func (r *fakePurchaseRepo) Create(_ context.Context, purchase *entity.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	r.purchases[purchase.ID] = purchase
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakePurchaseRepo) GetWithDetails(_ context.Context, id uuid.UUID) (*entity.Purchase, error) {
	return r.GetByID(context.Background(), id)
}

func (r *fakePurchaseRepo) Update(_ context.Context, purchase *entity.Purchase) error {
	r.purchases[purchase.ID] = purchase
	return nil
}

func (r *fakePurchaseRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.PurchaseStatus) error {
	if p, ok := r.purchases[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePurchaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.purchases, id)
	return nil
}

func (r *fakePurchaseRepo) List(_ context.Context, params *repository.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var result []entity.Purchase
	for _, p := range r.purchases {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *fakePurchaseRepo) GetPendingPurchases(_ context.Context, params *pagination.PaginationParams) ([]entity.Purchase, int64, error) {
	var result []entity.Purchase
	for _, p := range r.purchases {
		if p.Status == enum.PurchaseStatusPending {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

type fakePurchaseDetailRepo struct {
	details []entity.PurchaseDetail
}

func (r *fakePurchaseDetailRepo) CreateBatch(_ context.Context, details []entity.PurchaseDetail) error {
	r.details = append(r.details, details...)
	return nil
}

func (r *fakePurchaseDetailRepo) GetByPurchaseID(_ context.Context, purchaseID uuid.UUID) ([]entity.PurchaseDetail, error) {
	var result []entity.PurchaseDetail
	for _, d := range r.details {
		if d.PurchaseID == purchaseID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (r *fakePurchaseDetailRepo) DeleteByPurchaseID(_ context.Context, purchaseID uuid.UUID) error {
	var kept []entity.PurchaseDetail
	for _, d := range r.details {
		if d.PurchaseID != purchaseID {
			kept = append(kept, d)
		}
	}
	r.details = kept
	return nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*entity.Supplier
}

func newFakeSupplierRepo(suppliers ...*entity.Supplier) *fakeSupplierRepo {
	repo := &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*entity.Supplier)}
	for _, s := range suppliers {
		repo.suppliers[s.ID] = s
	}
	return repo
}

func (r *fakeSupplierRepo) Create(_ context.Context, supplier *entity.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	r.suppliers[supplier.ID] = supplier
	return nil
}

func (r *fakeSupplierRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSupplierRepo) Update(_ context.Context, supplier *entity.Supplier) error {
	r.suppliers[supplier.ID] = supplier
	return nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

func (r *fakeSupplierRepo) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error) {
	var result []entity.Supplier
	for _, s := range r.suppliers {
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}
