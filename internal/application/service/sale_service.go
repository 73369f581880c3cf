package service

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
)

// SaleService handles recorded sale operations. Sales are created by the
// billing checkout; this service covers listing, lookups, cancellation
// and due payments.
type SaleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

// NewSaleService creates a new sale service
func NewSaleService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
	}
}

// GetSale retrieves a sale with its items and customer
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// GetSaleByInvoiceNo retrieves a sale by its invoice number
func (s *SaleService) GetSaleByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filters and pagination
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(sales,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// GetDueSales lists completed sales with an outstanding balance
func (s *SaleService) GetDueSales(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.GetDueSales(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(sales,
		pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// CancelSale cancels a sale and restores the sold stock. Fully paid sales
// cannot be cancelled; they need a refund flow that is out of scope.
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	if sale.Status == enum.SaleStatusCancel {
		return nil, apperror.NewConflictError("Sale is already cancelled")
	}
	if sale.PaymentStatus == enum.PaymentStatusPaid {
		return nil, apperror.NewConflictError("A fully paid sale cannot be cancelled")
	}

	increments := make(map[uuid.UUID]int, len(sale.Items))
	for _, item := range sale.Items {
		increments[item.ProductID] = item.Quantity
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
		return nil, err
	}

	if err := s.saleRepo.UpdateStatus(ctx, sale.ID, enum.SaleStatusCancel); err != nil {
		return nil, err
	}

	sale.Status = enum.SaleStatusCancel
	return sale, nil
}

// PayDue records an additional payment against a sale's outstanding balance
// and re-derives the payment status.
func (s *SaleService) PayDue(ctx context.Context, id uuid.UUID, amount int64) (*entity.Sale, error) {
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}

	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	if sale.Status == enum.SaleStatusCancel {
		return nil, apperror.NewConflictError("Cannot pay against a cancelled sale")
	}
	if sale.Due <= 0 {
		return nil, apperror.NewConflictError("Sale has no outstanding balance")
	}
	if amount > sale.Due {
		return nil, apperror.NewBadRequestError("Payment exceeds the outstanding balance")
	}

	sale.Paid += amount
	sale.Due = sale.Total - sale.Paid
	sale.PaymentStatus = enum.DerivePaymentStatus(sale.Paid, sale.Total)

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	return sale, nil
}
