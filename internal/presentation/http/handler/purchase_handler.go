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

// PurchaseHandler handles supplier purchase HTTP requests
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// Create handles recording a new pending purchase
func (h *PurchaseHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		SupplierID *uuid.UUID `json:"supplier_id"`
		Date       string     `json:"date"`
		Tax        float64    `json:"tax"`
		Paid       float64    `json:"paid"`
		Lines      []struct {
			ProductID uuid.UUID `json:"product_id" binding:"required"`
			Quantity  int       `json:"quantity" binding:"required"`
			UnitCost  float64   `json:"unit_cost"`
		} `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	input := &service.CreatePurchaseInput{
		UserID:     *userID,
		SupplierID: req.SupplierID,
		Date:       date,
		Tax:        int64(math.Round(req.Tax * 100)),
		Paid:       int64(math.Round(req.Paid * 100)),
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, service.PurchaseLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  int64(math.Round(line.UnitCost * 100)),
		})
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Purchase created successfully", purchase)
}

// List handles listing purchases with filters
func (h *PurchaseHandler) List(c *gin.Context) {
	params := &repository.PurchaseFilterParams{
		Pagination: PaginationFromQuery(c),
		Search:     c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		var status enum.PurchaseStatus
		switch statusStr {
		case "pending":
			status = enum.PurchaseStatusPending
		case "approved":
			status = enum.PurchaseStatusApproved
		default:
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	if supplierIDStr := c.Query("supplier_id"); supplierIDStr != "" {
		supplierID, err := uuid.Parse(supplierIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid supplier ID")
			return
		}
		params.SupplierID = &supplierID
	}

	result, err := h.purchaseService.ListPurchases(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Purchases retrieved successfully", result)
}

// ListPending handles listing purchases awaiting approval
func (h *PurchaseHandler) ListPending(c *gin.Context) {
	result, err := h.purchaseService.GetPendingPurchases(c.Request.Context(), PaginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Pending purchases retrieved successfully", result)
}

// Get handles getting a single purchase with its details
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid purchase ID")
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase retrieved successfully", purchase)
}

// Approve handles approving a pending purchase
func (h *PurchaseHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid purchase ID")
		return
	}

	purchase, err := h.purchaseService.ApprovePurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase approved successfully", purchase)
}

// Delete handles deleting a pending purchase
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid purchase ID")
		return
	}

	if err := h.purchaseService.DeletePurchase(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListSuppliers handles listing suppliers
func (h *PurchaseHandler) ListSuppliers(c *gin.Context) {
	result, err := h.purchaseService.ListSuppliers(c.Request.Context(), PaginationFromQuery(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Suppliers retrieved successfully", result)
}

// CreateSupplier handles creating a supplier
func (h *PurchaseHandler) CreateSupplier(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	supplier, err := h.purchaseService.CreateSupplier(c.Request.Context(), &service.CreateSupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Supplier created successfully", supplier)
}

// GetSupplier handles getting a single supplier
func (h *PurchaseHandler) GetSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.purchaseService.GetSupplier(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Supplier retrieved successfully", supplier)
}

// UpdateSupplier handles updating a supplier
func (h *PurchaseHandler) UpdateSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req struct {
		Name    string  `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	supplier, err := h.purchaseService.UpdateSupplier(c.Request.Context(), id, &service.CreateSupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Supplier updated successfully", supplier)
}

// DeleteSupplier handles deleting a supplier
func (h *PurchaseHandler) DeleteSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid supplier ID")
		return
	}

	if err := h.purchaseService.DeleteSupplier(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
