package repository

import (
	"context"
	"time"
)

// SalesSummaryResult represents aggregate sales figures for a period
type SalesSummaryResult struct {
	SaleCount int64
	Revenue   int64 // cents
	Due       int64 // cents
}

// AnalyticsRepository defines interface for dashboard aggregation queries
type AnalyticsRepository interface {
	// GetSalesSummary returns sale count and revenue since the given time
	GetSalesSummary(ctx context.Context, since time.Time) (*SalesSummaryResult, error)

	// CountProducts returns the total number of products
	CountProducts(ctx context.Context) (int64, error)

	// CountLowStock returns the number of products below the stock threshold
	CountLowStock(ctx context.Context, threshold int) (int64, error)

	// CountCustomers returns the total number of customers
	CountCustomers(ctx context.Context) (int64, error)
}
