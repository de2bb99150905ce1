package http

import (
	"net/http"

	"distro-backend/internal/handlers"
	"distro-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the admin API served on the main port.
func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	routeHandler *handlers.RouteHandler,
	shopHandler *handlers.ShopHandler,
	warehouseHandler *handlers.WarehouseHandler,
	assignmentHandler *handlers.AssignmentHandler,
	saleHandler *handlers.SaleHandler,
	expenseHandler *handlers.ExpenseHandler,
	dayCloseHandler *handlers.DayCloseHandler,
	reportHandler *handlers.ReportHandler,
	paymentHandler *handlers.PaymentHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Health and metrics
	r.HandleFunc("/healthz", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/readyz", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/totp/verify", authHandler.VerifyTOTP).Methods("POST")

	// Razorpay webhook is signed, not JWT-authenticated
	r.HandleFunc("/webhooks/razorpay", paymentHandler.Webhook).Methods("POST")

	// Session routes
	sessionAPI := r.PathPrefix("/auth").Subrouter()
	sessionAPI.Use(authMiddleware.Authenticate)
	sessionAPI.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	sessionAPI.HandleFunc("/totp/setup", authHandler.SetupTOTP).Methods("POST")
	sessionAPI.HandleFunc("/totp/enable", authHandler.EnableTOTP).Methods("POST")
	sessionAPI.HandleFunc("/totp/disable", authHandler.DisableTOTP).Methods("POST")

	// Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.RequireAdmin)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/drivers", userHandler.ListDrivers).Methods("GET")
	usersAPI.HandleFunc("/login-logs", userHandler.ListLoginLogs).Methods("GET")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	usersAPI.HandleFunc("/{id}", userHandler.UpdateUser).Methods("PUT")
	usersAPI.HandleFunc("/{id}", userHandler.DeleteUser).Methods("DELETE")
	usersAPI.HandleFunc("/{id}/toggle-active", userHandler.ToggleActive).Methods("PATCH")

	// Products
	productsAPI := r.PathPrefix("/api/products").Subrouter()
	productsAPI.Use(authMiddleware.Authenticate)
	productsAPI.HandleFunc("", productHandler.ListProducts).Methods("GET")
	productsAPI.HandleFunc("", authMiddleware.RequireRole("admin", "manager")(http.HandlerFunc(productHandler.CreateProduct)).ServeHTTP).Methods("POST")
	productsAPI.HandleFunc("/{id}", productHandler.GetProduct).Methods("GET")
	productsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin", "manager")(http.HandlerFunc(productHandler.UpdateProduct)).ServeHTTP).Methods("PUT")

	// Routes
	routesAPI := r.PathPrefix("/api/routes").Subrouter()
	routesAPI.Use(authMiddleware.Authenticate)
	routesAPI.HandleFunc("", routeHandler.ListRoutes).Methods("GET")
	routesAPI.HandleFunc("", authMiddleware.RequireRole("admin", "manager")(http.HandlerFunc(routeHandler.CreateRoute)).ServeHTTP).Methods("POST")
	routesAPI.HandleFunc("/{id}", routeHandler.GetRoute).Methods("GET")
	routesAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin", "manager")(http.HandlerFunc(routeHandler.UpdateRoute)).ServeHTTP).Methods("PUT")
	routesAPI.HandleFunc("/{id}/shops", routeHandler.ListRouteShops).Methods("GET")

	// Shops
	shopsAPI := r.PathPrefix("/api/shops").Subrouter()
	shopsAPI.Use(authMiddleware.Authenticate)
	shopsAPI.HandleFunc("", shopHandler.ListShops).Methods("GET")
	shopsAPI.HandleFunc("", shopHandler.CreateShop).Methods("POST")
	shopsAPI.HandleFunc("/{id}", shopHandler.GetShop).Methods("GET")
	shopsAPI.HandleFunc("/{id}", shopHandler.UpdateShop).Methods("PUT")
	shopsAPI.HandleFunc("/{id}/sales", shopHandler.ListShopSales).Methods("GET")
	shopsAPI.HandleFunc("/{id}/transactions", paymentHandler.ListShopTransactions).Methods("GET")

	// Warehouse
	warehouseAPI := r.PathPrefix("/api/warehouse").Subrouter()
	warehouseAPI.Use(authMiddleware.RequireRole("admin", "manager"))
	warehouseAPI.HandleFunc("/stock", warehouseHandler.ListStock).Methods("GET")
	warehouseAPI.HandleFunc("/stock/add", warehouseHandler.AddStock).Methods("POST")
	warehouseAPI.HandleFunc("/stock/deduct", warehouseHandler.DeductStock).Methods("POST")
	warehouseAPI.HandleFunc("/movements", warehouseHandler.ListMovements).Methods("GET")

	// Stock assignment
	assignAPI := r.PathPrefix("/api/assignments").Subrouter()
	assignAPI.Use(authMiddleware.RequireRole("admin", "manager"))
	assignAPI.HandleFunc("", assignmentHandler.ListAssigned).Methods("GET")
	assignAPI.HandleFunc("", assignmentHandler.AssignStock).Methods("POST")

	// Sales
	salesAPI := r.PathPrefix("/api/sales").Subrouter()
	salesAPI.Use(authMiddleware.Authenticate)
	salesAPI.HandleFunc("", saleHandler.ListSales).Methods("GET")
	salesAPI.HandleFunc("", saleHandler.CreateSale).Methods("POST")
	salesAPI.HandleFunc("/receipt/{receipt_no}", saleHandler.GetByReceipt).Methods("GET")

	// Expenses
	expensesAPI := r.PathPrefix("/api/expenses").Subrouter()
	expensesAPI.Use(authMiddleware.Authenticate)
	expensesAPI.HandleFunc("", expenseHandler.ListExpenses).Methods("GET")
	expensesAPI.HandleFunc("", expenseHandler.CreateExpense).Methods("POST")
	expensesAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(expenseHandler.DeleteExpense)).ServeHTTP).Methods("DELETE")

	// Day summary and load-out
	dayAPI := r.PathPrefix("/api/day").Subrouter()
	dayAPI.Use(authMiddleware.Authenticate)
	dayAPI.HandleFunc("/summary", dayCloseHandler.GetSummary).Methods("GET")
	dayAPI.HandleFunc("/load-out", dayCloseHandler.TriggerLoadOut).Methods("POST")
	dayAPI.HandleFunc("/closes", dayCloseHandler.ListCloses).Methods("GET")

	// Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.RequireRole("admin", "manager"))
	reportsAPI.HandleFunc("/day-summary.pdf", reportHandler.DaySummaryPDF).Methods("GET")
	reportsAPI.HandleFunc("/day-summary.csv", reportHandler.DaySummaryCSV).Methods("GET")
	reportsAPI.HandleFunc("/warehouse-movements.csv", reportHandler.WarehouseMovementCSV).Methods("GET")

	// Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("/order", paymentHandler.CreateOrder).Methods("POST")
	paymentsAPI.HandleFunc("/verify", paymentHandler.VerifyPayment).Methods("POST")

	return r
}

// NewDriverRouter builds the driver portal served on the second port.
func NewDriverRouter(
	portalHandler *handlers.DriverPortalHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	r.HandleFunc("/healthz", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/portal/login", portalHandler.Login).Methods("POST")

	portalAPI := r.PathPrefix("/portal").Subrouter()
	portalAPI.Use(authMiddleware.AuthenticateDriver)
	portalAPI.HandleFunc("/start-route", portalHandler.StartRoute).Methods("POST")
	portalAPI.HandleFunc("/assigned-stock", portalHandler.AssignedStock).Methods("GET")
	portalAPI.HandleFunc("/bill", portalHandler.BillShop).Methods("POST")
	portalAPI.HandleFunc("/day-summary", portalHandler.DaySummary).Methods("GET")
	portalAPI.HandleFunc("/load-out", portalHandler.LoadOut).Methods("POST")

	return r
}
