package repository

import (
	"context"
	"time"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// CreateWithItems inserts the sale and its line items in one
	// transaction; on failure neither is persisted.
	CreateWithItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus) error
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// GetDueSales returns sales with an outstanding due amount
	GetDueSales(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	Status        *enum.SaleStatus
	PaymentStatus *enum.PaymentStatus
	CustomerID    *uuid.UUID
	UserID        *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortOrder     string
}
