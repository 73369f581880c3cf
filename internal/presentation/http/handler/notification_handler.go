package handler

import (
	"github.com/dukahub/pos-api/internal/application/service"
	"github.com/dukahub/pos-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles listing the user's notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	unreadOnly := c.Query("unread") == "true"

	result, err := h.notificationService.ListNotifications(c.Request.Context(), *userID, PaginationFromQuery(c), unreadOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Notifications retrieved successfully", result)
}

// UnreadCount handles returning the unread notification count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.notificationService.CountUnread(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Unread count retrieved successfully", gin.H{"count": count})
}

// MarkRead handles marking a notification as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), *userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notification marked as read", nil)
}

// MarkAllRead handles marking all of the user's notifications as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), *userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "All notifications marked as read", nil)
}
