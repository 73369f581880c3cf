package main

import (
	"log"

	"github.com/dukahub/pos-api/internal/application/service"
	"github.com/dukahub/pos-api/internal/config"
	"github.com/dukahub/pos-api/internal/infrastructure/database"
	"github.com/dukahub/pos-api/internal/infrastructure/repository"
	"github.com/dukahub/pos-api/internal/presentation/http/handler"
	"github.com/dukahub/pos-api/internal/presentation/http/routes"
	"github.com/dukahub/pos-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	loginHistoryRepo := repository.NewLoginHistoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	purchaseDetailRepo := repository.NewPurchaseDetailRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, loginHistoryRepo, settingsRepo, notificationRepo, jwtManager)
	userService := service.NewUserService(userRepo, loginHistoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, cfg.Billing)
	customerService := service.NewCustomerService(customerRepo)
	billingService := service.NewBillingService(productRepo, customerRepo, saleRepo, notificationRepo, settingsRepo, userRepo, cfg.Billing)
	saleService := service.NewSaleService(saleRepo, productRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, purchaseDetailRepo, productRepo, supplierRepo, notificationRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	settingsService := service.NewSettingsService(settingsRepo, cfg.Billing)
	dashboardService := service.NewDashboardService(analyticsRepo, saleRepo, cfg.Billing)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService),
		Billing:      handler.NewBillingHandler(billingService),
		Product:      handler.NewProductHandler(productService),
		Customer:     handler.NewCustomerHandler(customerService),
		Sale:         handler.NewSaleHandler(saleService),
		Purchase:     handler.NewPurchaseHandler(purchaseService),
		Notification: handler.NewNotificationHandler(notificationService),
		Settings:     handler.NewSettingsHandler(settingsService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		User:         handler.NewUserHandler(userService),
	}

	// Set up router
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Start server
	addr := ":" + cfg.App.Port
	log.Printf("Starting %s on %s", cfg.App.Name, addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
