package routes

import (
	"time"

	"github.com/dukahub/pos-api/internal/config"
	"github.com/dukahub/pos-api/internal/domain/entity"
	domainRepo "github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/internal/presentation/http/handler"
	"github.com/dukahub/pos-api/internal/presentation/http/middleware"
	"github.com/dukahub/pos-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	Billing      *handler.BillingHandler
	Product      *handler.ProductHandler
	Customer     *handler.CustomerHandler
	Sale         *handler.SaleHandler
	Purchase     *handler.PurchaseHandler
	Notification *handler.NotificationHandler
	Settings     *handler.SettingsHandler
	Dashboard    *handler.DashboardHandler
	User         *handler.UserHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Profile
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.GET("/profile/login-history", h.Auth.GetLoginHistory)

	// Settings
	protected.GET("/settings", h.Settings.Get)
	protected.PUT("/settings", h.Settings.Update)

	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetStats)

	// Billing cart + checkout
	billing := protected.Group("/billing")
	{
		billing.GET("/cart", h.Billing.GetCart)
		billing.POST("/cart/items", h.Billing.AddItem)
		billing.PUT("/cart/items/:productId", h.Billing.UpdateQuantity)
		billing.DELETE("/cart/items/:productId", h.Billing.RemoveItem)
		billing.PUT("/cart/customer", h.Billing.SelectCustomer)
		billing.DELETE("/cart/customer", h.Billing.ClearCustomer)
		billing.POST("/cart/customer", h.Billing.CreateCustomer)
		billing.PUT("/cart/payment", h.Billing.SetPayment)
		billing.PUT("/cart/notes", h.Billing.SetNotes)
		billing.POST("/checkout", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Billing.Checkout)
		billing.POST("/new-sale", h.Billing.StartNewSale)
	}

	// Products
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/barcode/:barcode", h.Product.GetByBarcode)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Product.Delete)
	}

	// Categories
	categories := protected.Group("/categories")
	{
		categories.GET("", h.Product.ListCategories)
		categories.POST("", h.Product.CreateCategory)
		categories.PUT("/:id", h.Product.UpdateCategory)
		categories.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Product.DeleteCategory)
	}

	// Customers
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Customer.Delete)
	}

	// Sales
	sales := protected.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		sales.GET("/due", h.Sale.ListDue)
		sales.GET("/invoice/:invoiceNo", h.Sale.GetByInvoiceNo)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/cancel", middleware.RequireRole(entity.RoleAdmin), h.Sale.Cancel)
		sales.POST("/:id/pay", h.Sale.PayDue)
	}

	// Purchases
	purchases := protected.Group("/purchases")
	{
		purchases.GET("", h.Purchase.List)
		purchases.POST("", h.Purchase.Create)
		purchases.GET("/pending", h.Purchase.ListPending)
		purchases.GET("/:id", h.Purchase.Get)
		purchases.POST("/:id/approve", middleware.RequireRole(entity.RoleAdmin), h.Purchase.Approve)
		purchases.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Purchase.Delete)
	}

	// Suppliers
	suppliers := protected.Group("/suppliers")
	{
		suppliers.GET("", h.Purchase.ListSuppliers)
		suppliers.POST("", h.Purchase.CreateSupplier)
		suppliers.GET("/:id", h.Purchase.GetSupplier)
		suppliers.PUT("/:id", h.Purchase.UpdateSupplier)
		suppliers.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Purchase.DeleteSupplier)
	}

	// Notifications
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread-count", h.Notification.UnreadCount)
		notifications.PUT("/read-all", h.Notification.MarkAllRead)
		notifications.PUT("/:id/read", h.Notification.MarkRead)
	}

	// Staff management (admin only)
	users := protected.Group("/users")
	users.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.GET("/:id/login-history", h.User.GetLoginHistory)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}
}
