package repository

import (
	"context"
	"errors"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	domainRepo "github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) domainRepo.PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Details").
		Preload("Details.Product").
		First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *entity.Purchase) error {
	return r.db.WithContext(ctx).Save(purchase).Error
}

func (r *purchaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PurchaseStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Purchase{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *purchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Purchase{}, "id = ?", id).Error
}

func (r *purchaseRepository) List(ctx context.Context, params *domainRepo.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Purchase{})

	if params.Search != "" {
		query = query.Where("purchase_no ILIKE ?", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Supplier").Preload("Details").
		Order("created_at DESC").
		Find(&purchases).Error

	return purchases, total, err
}

func (r *purchaseRepository) GetPendingPurchases(ctx context.Context, params *pagination.PaginationParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Purchase{}).
		Where("status = ?", enum.PurchaseStatusPending)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Supplier").
		Order("created_at DESC").
		Find(&purchases).Error

	return purchases, total, err
}

type purchaseDetailRepository struct {
	db *gorm.DB
}

// NewPurchaseDetailRepository creates a new purchase detail repository
func NewPurchaseDetailRepository(db *gorm.DB) domainRepo.PurchaseDetailRepository {
	return &purchaseDetailRepository{db: db}
}

func (r *purchaseDetailRepository) CreateBatch(ctx context.Context, details []entity.PurchaseDetail) error {
	if len(details) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&details).Error
}

func (r *purchaseDetailRepository) GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) ([]entity.PurchaseDetail, error) {
	var details []entity.PurchaseDetail
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("purchase_id = ?", purchaseID).
		Find(&details).Error
	return details, err
}

func (r *purchaseDetailRepository) DeleteByPurchaseID(ctx context.Context, purchaseID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.PurchaseDetail{}, "purchase_id = ?", purchaseID).Error
}
