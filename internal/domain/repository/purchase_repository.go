package repository

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
)

// PurchaseRepository defines the interface for purchase data operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
	Update(ctx context.Context, purchase *entity.Purchase) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PurchaseStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *PurchaseFilterParams) ([]entity.Purchase, int64, error)
	GetPendingPurchases(ctx context.Context, params *pagination.PaginationParams) ([]entity.Purchase, int64, error)
}

// PurchaseFilterParams contains filtering parameters for purchase queries
type PurchaseFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.PurchaseStatus
	SupplierID *uuid.UUID
}

// PurchaseDetailRepository defines the interface for purchase detail data operations
type PurchaseDetailRepository interface {
	CreateBatch(ctx context.Context, details []entity.PurchaseDetail) error
	GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) ([]entity.PurchaseDetail, error)
	DeleteByPurchaseID(ctx context.Context, purchaseID uuid.UUID) error
}
