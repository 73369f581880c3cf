package repository

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
)

// NotificationRepository defines the interface for in-app notification records
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	CreateBatch(ctx context.Context, notifications []entity.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, unreadOnly bool) ([]entity.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
