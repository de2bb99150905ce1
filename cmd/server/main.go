package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distro-backend/internal/auth"
	"distro-backend/internal/cache"
	"distro-backend/internal/config"
	"distro-backend/internal/database"
	"distro-backend/internal/db"
	"distro-backend/internal/handlers"
	"distro-backend/internal/health"
	httprouter "distro-backend/internal/http"
	"distro-backend/internal/middleware"
	"distro-backend/internal/monitoring"
	"distro-backend/internal/repositories"
	"distro-backend/internal/services"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("[Main] Migration failed: %v", err)
	}

	if err := cache.Init(); err != nil {
		log.Printf("[Main] Redis unavailable, running without cache: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	routeRepo := repositories.NewRouteRepository(pool)
	shopRepo := repositories.NewShopRepository(pool)
	warehouseRepo := repositories.NewWarehouseRepository(pool)
	assignedRepo := repositories.NewAssignedStockRepository(pool)
	saleRepo := repositories.NewSaleRepository(pool)
	expenseRepo := repositories.NewExpenseRepository(pool)
	dayCloseRepo := repositories.NewDayCloseRepository(pool)
	txnRepo := repositories.NewOnlineTransactionRepository(pool)
	loginLogRepo := repositories.NewLoginLogRepository(pool)

	jwtManager := auth.NewJWTManager(cfg)

	// Services
	summaryService := services.NewSummaryService(productRepo, saleRepo, assignedRepo)
	loadOutService := services.NewLoadOutService(summaryService, warehouseRepo, assignedRepo, dayCloseRepo, productRepo)
	if cfg.Archive.Enabled {
		archive, err := services.NewArchiveService(context.Background(),
			cfg.Archive.Endpoint, cfg.Archive.Region, cfg.Archive.Bucket,
			cfg.Archive.AccessKey, cfg.Archive.SecretKey)
		if err != nil {
			log.Printf("[Main] Archive disabled: %v", err)
		} else {
			loadOutService.Archive = archive
			log.Printf("[Main] Summary archival enabled (bucket %s)", cfg.Archive.Bucket)
		}
	}
	autoCloser := services.NewAutoCloser(loadOutService)
	defer autoCloser.Stop()

	billingService := services.NewBillingService(productRepo, saleRepo, assignedRepo, shopRepo)
	if cfg.Printer.URL != "" {
		billingService.Printer = services.NewPrinterService(cfg.Printer.URL)
		log.Printf("[Main] Receipt printing enabled via %s", cfg.Printer.URL)
	}

	assignmentService := services.NewAssignmentService(warehouseRepo, assignedRepo)
	paymentService := services.NewPaymentService(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret, txnRepo, shopRepo)
	totpService := services.NewTOTPService(userRepo)
	userService := services.NewUserService(userRepo, loginLogRepo, totpService, jwtManager)
	reportService := services.NewReportService(summaryService, expenseRepo, warehouseRepo)

	healthChecker := health.NewHealthChecker(pool)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService, loginLogRepo)
	productHandler := handlers.NewProductHandler(productRepo)
	routeHandler := handlers.NewRouteHandler(routeRepo, shopRepo)
	shopHandler := handlers.NewShopHandler(shopRepo, saleRepo)
	warehouseHandler := handlers.NewWarehouseHandler(warehouseRepo)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, assignedRepo)
	saleHandler := handlers.NewSaleHandler(billingService, saleRepo)
	expenseHandler := handlers.NewExpenseHandler(expenseRepo)
	dayCloseHandler := handlers.NewDayCloseHandler(summaryService, loadOutService, autoCloser, dayCloseRepo)
	reportHandler := handlers.NewReportHandler(reportService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	healthHandler := handlers.NewHealthHandler(healthChecker)
	portalHandler := handlers.NewDriverPortalHandler(userService, billingService, summaryService, loadOutService, autoCloser, assignedRepo, shopRepo)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	adminRouter := httprouter.NewRouter(
		authHandler, userHandler, productHandler, routeHandler, shopHandler,
		warehouseHandler, assignmentHandler, saleHandler, expenseHandler,
		dayCloseHandler, reportHandler, paymentHandler, healthHandler,
		authMiddleware,
	)
	driverRouter := httprouter.NewDriverRouter(portalHandler, healthHandler, authMiddleware)

	adminServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      corsMiddleware(adminRouter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}
	driverServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.DriverPort),
		Handler:      corsMiddleware(driverRouter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	// Monitoring dashboard backend (internal only, no auth)
	if port := os.Getenv("MONITOR_PORT"); port != "" {
		monServer := monitoring.NewServer(pool, atoiOr(port, 9091))
		go monServer.Start()
	}

	go func() {
		log.Printf("[Main] Driver portal listening on :%d", cfg.Server.DriverPort)
		if err := driverServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Main] Driver portal error: %v", err)
		}
	}()

	go func() {
		log.Printf("[Main] Admin API listening on :%d", cfg.Server.Port)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Main] Admin API error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Main] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(ctx); err != nil {
		log.Printf("[Main] Admin shutdown error: %v", err)
	}
	if err := driverServer.Shutdown(ctx); err != nil {
		log.Printf("[Main] Driver portal shutdown error: %v", err)
	}
	log.Println("[Main] Stopped")
}

func atoiOr(s string, fallback int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}
