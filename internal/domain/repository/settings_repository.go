package repository

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/google/uuid"
)

// SettingsRepository defines the interface for user settings data operations
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserSettings, error)
	Create(ctx context.Context, settings *entity.UserSettings) error
	Update(ctx context.Context, settings *entity.UserSettings) error
}
