package service

import (
	"context"
	"time"

	"github.com/dukahub/pos-api/internal/config"
	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/pagination"
)

// DashboardService aggregates summary stats for the dashboard endpoint
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	saleRepo      repository.SaleRepository
	billingCfg    config.BillingConfig
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsRepo repository.AnalyticsRepository, saleRepo repository.SaleRepository, billingCfg config.BillingConfig) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		saleRepo:      saleRepo,
		billingCfg:    billingCfg,
	}
}

// DashboardStats is the aggregate payload for the dashboard endpoint
type DashboardStats struct {
	TodaySales     int64         `json:"today_sales"`
	TodayRevenue   float64       `json:"today_revenue"`
	TodayDue       float64       `json:"today_due"`
	TotalProducts  int64         `json:"total_products"`
	LowStockCount  int64         `json:"low_stock_count"`
	TotalCustomers int64         `json:"total_customers"`
	RecentSales    []entity.Sale `json:"recent_sales"`
}

// GetStats returns today's sales figures alongside inventory and customer counts
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	summary, err := s.analyticsRepo.GetSalesSummary(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	totalProducts, err := s.analyticsRepo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.analyticsRepo.CountLowStock(ctx, s.billingCfg.LowStockThreshold)
	if err != nil {
		return nil, err
	}

	totalCustomers, err := s.analyticsRepo.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.saleRepo.List(ctx, &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 5},
	})
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TodaySales:     summary.SaleCount,
		TodayRevenue:   float64(summary.Revenue) / 100,
		TodayDue:       float64(summary.Due) / 100,
		TotalProducts:  totalProducts,
		LowStockCount:  lowStock,
		TotalCustomers: totalCustomers,
		RecentSales:    recent,
	}, nil
}
