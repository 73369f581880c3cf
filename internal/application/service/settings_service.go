package service

import (
	"context"

	"github.com/dukahub/pos-api/internal/config"
	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/google/uuid"
)

// SettingsService handles per-user settings
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	billingCfg   config.BillingConfig
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, billingCfg config.BillingConfig) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		billingCfg:   billingCfg,
	}
}

// GetSettings returns the user's settings, creating defaults on first read
func (s *SettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entity.UserSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &entity.UserSettings{
		UserID:         userID,
		Currency:       s.billingCfg.Currency,
		DateFormat:     "DD/MM/YYYY",
		LowStockAlerts: true,
		SaleAlerts:     true,
		LoginAlerts:    true,
	}
	if err := s.settingsRepo.Create(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettingsInput represents the update settings input
type UpdateSettingsInput struct {
	Currency       *string
	DateFormat     *string
	LowStockAlerts *bool
	SaleAlerts     *bool
	LoginAlerts    *bool
}

// UpdateSettings updates the user's settings
func (s *SettingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, input *UpdateSettingsInput) (*entity.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if input.DateFormat != nil {
		settings.DateFormat = *input.DateFormat
	}
	if input.LowStockAlerts != nil {
		settings.LowStockAlerts = *input.LowStockAlerts
	}
	if input.SaleAlerts != nil {
		settings.SaleAlerts = *input.SaleAlerts
	}
	if input.LoginAlerts != nil {
		settings.LoginAlerts = *input.LoginAlerts
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
