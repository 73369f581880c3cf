package repository

import (
	"context"
	"time"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	domainRepo "github.com/dukahub/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetSalesSummary(ctx context.Context, since time.Time) (*domainRepo.SalesSummaryResult, error) {
	var result struct {
		SaleCount int64
		Revenue   int64
		Due       int64
	}

	err := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Select("COUNT(*) as sale_count, COALESCE(SUM(total), 0) as revenue, COALESCE(SUM(due), 0) as due").
		Where("status = ? AND sale_date >= ?", enum.SaleStatusComplete, since).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &domainRepo.SalesSummaryResult{
		SaleCount: result.SaleCount,
		Revenue:   result.Revenue,
		Due:       result.Due,
	}, nil
}

func (r *analyticsRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("stock < ?", threshold).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).Count(&count).Error
	return count, err
}
