package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"distro-backend/internal/middleware"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/services"
	"distro-backend/internal/timeutil"
)

// DriverPortalHandler serves the driver app on the portal server. All
// stock views here are driver-scoped.
type DriverPortalHandler struct {
	Users      *services.UserService
	Billing    *services.BillingService
	Summary    *services.SummaryService
	LoadOutSvc *services.LoadOutService
	AutoCloser *services.AutoCloser
	Assigned   *repositories.AssignedStockRepository
	Shops      *repositories.ShopRepository
}

func NewDriverPortalHandler(
	users *services.UserService,
	billing *services.BillingService,
	summary *services.SummaryService,
	loadOut *services.LoadOutService,
	autoCloser *services.AutoCloser,
	assigned *repositories.AssignedStockRepository,
	shops *repositories.ShopRepository,
) *DriverPortalHandler {
	return &DriverPortalHandler{
		Users:      users,
		Billing:    billing,
		Summary:    summary,
		LoadOutSvc: loadOut,
		AutoCloser: autoCloser,
		Assigned:   assigned,
		Shops:      shops,
	}
}

func (h *DriverPortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, driver, err := h.Users.DriverLogin(r.Context(), req.Email, req.Password, req.RememberMe, clientIP(r), r.UserAgent())
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, services.ErrAccountDisabled) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":  token,
		"driver": driver,
	})
}

func driverScopeParams(r *http.Request) (driverID int, routeID int, dateStr string, ok bool) {
	driverID, ok = middleware.GetDriverIDFromContext(r.Context())
	routeID, _ = strconv.Atoi(r.URL.Query().Get("route_id"))
	dateStr = r.URL.Query().Get("date")
	return driverID, routeID, dateStr, ok
}

// StartRoute loads the driver's stock for the day and arms the
// auto-close timer for the scope.
func (h *DriverPortalHandler) StartRoute(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Driver ID not found in context", http.StatusUnauthorized)
		return
	}
	var req struct {
		RouteID int    `json:"route_id"`
		Date    string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RouteID <= 0 {
		http.Error(w, "route_id is required", http.StatusBadRequest)
		return
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "valid date (YYYY-MM-DD) is required", http.StatusBadRequest)
		return
	}

	summary, err := h.Summary.Build(r.Context(), date, req.RouteID, &driverID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.AutoCloser.Arm(req.RouteID, &driverID, date, summary.HasAssignedStock)

	shops, err := h.Shops.ListByRoute(r.Context(), req.RouteID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if shops == nil {
		shops = []*models.Shop{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary": summary,
		"shops":   shops,
	})
}

// AssignedStock returns the driver's remaining stock for a route day.
func (h *DriverPortalHandler) AssignedStock(w http.ResponseWriter, r *http.Request) {
	driverID, routeID, dateStr, ok := driverScopeParams(r)
	if !ok {
		http.Error(w, "Driver ID not found in context", http.StatusUnauthorized)
		return
	}
	if routeID <= 0 {
		http.Error(w, "route_id is required", http.StatusBadRequest)
		return
	}
	date, err := timeutil.ParseDate(dateStr)
	if err != nil {
		http.Error(w, "valid date (YYYY-MM-DD) is required", http.StatusBadRequest)
		return
	}

	rows, err := h.Assigned.ListForBilling(r.Context(), &driverID, routeID, date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		// Fall back to route-scoped stock when nothing is assigned to
		// this driver specifically.
		rows, err = h.Assigned.ListForBilling(r.Context(), nil, routeID, date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if rows == nil {
		rows = []*models.AssignedStock{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// BillShop records a sale for the acting driver.
func (h *DriverPortalHandler) BillShop(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Driver ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sale, receipt, err := h.Billing.CreateSale(r.Context(), &req, &driverID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrMalformedSalePayload) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sale":    sale,
		"receipt": receipt,
	})
}

// DaySummary is the driver's own reconciliation view. Arms or disarms
// the auto-close timer as a side effect, mirroring the summary screen.
func (h *DriverPortalHandler) DaySummary(w http.ResponseWriter, r *http.Request) {
	driverID, routeID, dateStr, ok := driverScopeParams(r)
	if !ok {
		http.Error(w, "Driver ID not found in context", http.StatusUnauthorized)
		return
	}
	if routeID <= 0 {
		http.Error(w, "route_id is required", http.StatusBadRequest)
		return
	}
	date, err := timeutil.ParseDate(dateStr)
	if err != nil {
		http.Error(w, "valid date (YYYY-MM-DD) is required", http.StatusBadRequest)
		return
	}

	summary, err := h.Summary.Build(r.Context(), date, routeID, &driverID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.AutoCloser.Arm(routeID, &driverID, date, summary.HasAssignedStock)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// LoadOut closes out the driver's day.
func (h *DriverPortalHandler) LoadOut(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.GetDriverIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Driver ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.LoadOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RouteID <= 0 {
		http.Error(w, "route_id is required", http.StatusBadRequest)
		return
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "valid date (YYYY-MM-DD) is required", http.StatusBadRequest)
		return
	}

	rec, err := h.LoadOutSvc.Execute(r.Context(), req.RouteID, &driverID, date, models.CloseTriggerManual, &driverID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
			"close": rec,
		})
		return
	}
	h.AutoCloser.Disarm(req.RouteID, &driverID, date)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}
