package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/dukahub/pos-api/pkg/utils"
	"github.com/google/uuid"
)

// PurchaseService handles supplier purchases. Purchases are created as
// pending and only replenish stock when approved.
type PurchaseService struct {
	purchaseRepo       repository.PurchaseRepository
	purchaseDetailRepo repository.PurchaseDetailRepository
	productRepo        repository.ProductRepository
	supplierRepo       repository.SupplierRepository
	notificationRepo   repository.NotificationRepository
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	purchaseDetailRepo repository.PurchaseDetailRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	notificationRepo repository.NotificationRepository,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:       purchaseRepo,
		purchaseDetailRepo: purchaseDetailRepo,
		productRepo:        productRepo,
		supplierRepo:       supplierRepo,
		notificationRepo:   notificationRepo,
	}
}

// PurchaseLineInput represents a single line of a new purchase
type PurchaseLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  int64 // cents
}

// CreatePurchaseInput represents the create purchase input
type CreatePurchaseInput struct {
	UserID     uuid.UUID
	SupplierID *uuid.UUID
	Date       time.Time
	Lines      []PurchaseLineInput
	Tax        int64 // cents
	Paid       int64 // cents
}

// CreatePurchase records a new pending purchase. The payment status is
// derived from the paid amount with the same policy used for sales.
func (s *PurchaseService) CreatePurchase(ctx context.Context, input *CreatePurchaseInput) (*entity.Purchase, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewBadRequestError("Purchase must have at least one line")
	}

	if input.SupplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, *input.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apperror.NewNotFoundError("Supplier")
		}
	}

	var subTotal int64
	details := make([]entity.PurchaseDetail, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Line quantity must be positive")
		}
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}

		lineTotal := line.UnitCost * int64(line.Quantity)
		subTotal += lineTotal
		details = append(details, entity.PurchaseDetail{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			Total:     lineTotal,
		})
	}

	total := subTotal + input.Tax
	if input.Paid < 0 || input.Paid > total {
		return nil, apperror.NewBadRequestError("Paid amount must be between zero and the purchase total")
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	purchase := &entity.Purchase{
		UserID:        input.UserID,
		SupplierID:    input.SupplierID,
		PurchaseNo:    utils.GeneratePurchaseNo(),
		Date:          date,
		Status:        enum.PurchaseStatusPending,
		SubTotal:      subTotal,
		Tax:           input.Tax,
		Total:         total,
		Paid:          input.Paid,
		PaymentStatus: enum.DerivePaymentStatus(input.Paid, total),
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	for i := range details {
		details[i].PurchaseID = purchase.ID
	}
	if err := s.purchaseDetailRepo.CreateBatch(ctx, details); err != nil {
		return nil, err
	}

	purchase.Details = details
	return purchase, nil
}

// GetPurchase retrieves a purchase with its details
func (s *PurchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	purchase, err := s.purchaseRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	return purchase, nil
}

// ApprovePurchase approves a pending purchase and atomically adds the
// purchased quantities to product stock.
func (s *PurchaseService) ApprovePurchase(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	purchase, err := s.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	if purchase.Status == enum.PurchaseStatusApproved {
		return nil, apperror.NewConflictError("Purchase is already approved")
	}

	increments := make(map[uuid.UUID]int, len(purchase.Details))
	for _, detail := range purchase.Details {
		increments[detail.ProductID] = detail.Quantity
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, enum.PurchaseStatusApproved); err != nil {
		return nil, err
	}
	purchase.Status = enum.PurchaseStatusApproved

	notification := &entity.Notification{
		UserID:   purchase.UserID,
		Severity: enum.NotificationSeverityInfo,
		Title:    "Purchase approved",
		Message:  fmt.Sprintf("Purchase %s was approved and stock has been replenished", purchase.PurchaseNo),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Failed to record purchase approval notification: %v", err)
	}

	return purchase, nil
}

// DeletePurchase deletes a purchase. Approved purchases cannot be deleted
// because their stock has already been applied.
func (s *PurchaseService) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	purchase, err := s.GetPurchase(ctx, id)
	if err != nil {
		return err
	}

	if purchase.Status == enum.PurchaseStatusApproved {
		return apperror.NewConflictError("An approved purchase cannot be deleted")
	}

	if err := s.purchaseDetailRepo.DeleteByPurchaseID(ctx, purchase.ID); err != nil {
		return err
	}
	return s.purchaseRepo.Delete(ctx, purchase.ID)
}

// ListPurchases lists purchases with filters and pagination
func (s *PurchaseService) ListPurchases(ctx context.Context, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(purchases,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// GetPendingPurchases lists purchases awaiting approval
func (s *PurchaseService) GetPendingPurchases(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	purchases, total, err := s.purchaseRepo.GetPendingPurchases(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(purchases,
		pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// CreateSupplierInput represents the create supplier input
type CreateSupplierInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

// CreateSupplier creates a new supplier
func (s *PurchaseService) CreateSupplier(ctx context.Context, input *CreateSupplierInput) (*entity.Supplier, error) {
	supplier := &entity.Supplier{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *PurchaseService) GetSupplier(ctx context.Context, id uuid.UUID) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}
	return supplier, nil
}

// UpdateSupplier updates an existing supplier
func (s *PurchaseService) UpdateSupplier(ctx context.Context, id uuid.UUID, input *CreateSupplierInput) (*entity.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		supplier.Name = input.Name
	}
	if input.Email != nil {
		supplier.Email = input.Email
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier deletes a supplier
func (s *PurchaseService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, supplier.ID)
}

// ListSuppliers lists suppliers with pagination and optional search
func (s *PurchaseService) ListSuppliers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Supplier], error) {
	suppliers, total, err := s.supplierRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(suppliers,
		pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
