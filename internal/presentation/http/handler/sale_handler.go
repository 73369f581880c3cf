package handler

import (
	"math"
	"time"

	"github.com/dukahub/pos-api/internal/application/service"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleHandler handles recorded sale HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// List handles listing sales with filters
func (h *SaleHandler) List(c *gin.Context) {
	params := &repository.SaleFilterParams{
		Pagination: PaginationFromQuery(c),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		var status enum.SaleStatus
		switch statusStr {
		case "complete":
			status = enum.SaleStatusComplete
		case "cancel":
			status = enum.SaleStatusCancel
		default:
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	if paymentStatusStr := c.Query("payment_status"); paymentStatusStr != "" {
		paymentStatus := enum.PaymentStatus(paymentStatusStr)
		params.PaymentStatus = &paymentStatus
	}

	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		customerID, err := uuid.Parse(customerIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &customerID
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &startDate
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		// Include the whole end day
		endOfDay := endDate.Add(24*time.Hour - time.Nanosecond)
		params.EndDate = &endOfDay
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// Get handles getting a single sale with its items
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// GetByInvoiceNo handles looking up a sale by its invoice number
func (h *SaleHandler) GetByInvoiceNo(c *gin.Context) {
	sale, err := h.saleService.GetSaleByInvoiceNo(c.Request.Context(), c.Param("invoiceNo"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// ListDue handles listing sales with outstanding balances
func (h *SaleHandler) ListDue(c *gin.Context) {
	result, err := h.saleService.GetDueSales(c.Request.Context(), PaginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Due sales retrieved successfully", result)
}

// Cancel handles cancelling a sale and restoring its stock
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale cancelled successfully", sale)
}

// PayDue handles recording a payment against a sale's balance
func (h *SaleHandler) PayDue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	amount := int64(math.Round(req.Amount * 100))
	sale, err := h.saleService.PayDue(c.Request.Context(), id, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", sale)
}
