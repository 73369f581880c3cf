package handler

import (
	"math"

	"github.com/dukahub/pos-api/internal/application/service"
	"github.com/dukahub/pos-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingHandler exposes the cart and checkout flow over HTTP
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// GetCart handles retrieving the current cart
func (h *BillingHandler) GetCart(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	cart := h.billingService.GetCart(c.Request.Context(), *userID)
	response.OK(c, "Cart retrieved successfully", cart)
}

// AddItem handles adding a product to the cart
func (h *BillingHandler) AddItem(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.billingService.AddItem(c.Request.Context(), *userID, req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", cart)
}

// UpdateQuantity handles changing a cart line's quantity
func (h *BillingHandler) UpdateQuantity(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.billingService.UpdateQuantity(c.Request.Context(), *userID, productID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", cart)
}

// RemoveItem handles removing a cart line
func (h *BillingHandler) RemoveItem(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	cart, err := h.billingService.RemoveItem(c.Request.Context(), *userID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", cart)
}

// SelectCustomer handles attaching an existing customer to the cart
func (h *BillingHandler) SelectCustomer(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.billingService.SelectCustomer(c.Request.Context(), *userID, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer selected", cart)
}

// ClearCustomer handles detaching the customer from the cart
func (h *BillingHandler) ClearCustomer(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	cart, err := h.billingService.ClearCustomer(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer cleared", cart)
}

// CreateCustomer handles creating a customer inline during billing
func (h *BillingHandler) CreateCustomer(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.billingService.CreateCustomer(c.Request.Context(), *userID, req.Name, req.Email, req.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created and selected", cart)
}

// SetPayment handles recording the payment method and paid amount
func (h *BillingHandler) SetPayment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Method     string  `json:"method"`
		PaidAmount float64 `json:"paid_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	paid := int64(math.Round(req.PaidAmount * 100))
	cart, err := h.billingService.SetPayment(c.Request.Context(), *userID, req.Method, paid)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment details updated", cart)
}

// SetNotes handles recording free-form notes on the cart
func (h *BillingHandler) SetNotes(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.billingService.SetNotes(c.Request.Context(), *userID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notes updated", cart)
}

// Checkout handles submitting the cart as a sale
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	receipt, err := h.billingService.Checkout(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale completed successfully", receipt)
}

// StartNewSale handles discarding the cart for a fresh sale
func (h *BillingHandler) StartNewSale(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	cart, err := h.billingService.StartNewSale(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "New sale started", cart)
}
