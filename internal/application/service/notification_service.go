package service

import (
	"context"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/dukahub/pos-api/pkg/pagination"
	"github.com/google/uuid"
)

// NotificationService handles in-app notification records
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListNotifications lists the user's notifications, optionally unread only
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, unreadOnly bool) (*pagination.PaginatedResult[entity.Notification], error) {
	notifications, total, err := s.notificationRepo.ListByUser(ctx, userID, params, unreadOnly)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(notifications,
		pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// CountUnread returns the user's unread notification count
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead marks a notification as read. Users can only mark their own.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return apperror.NewNotFoundError("Notification")
	}
	if notification.UserID != userID {
		return apperror.ErrForbidden
	}
	return s.notificationRepo.MarkRead(ctx, id)
}

// MarkAllRead marks all of the user's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
