package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"distro-backend/internal/middleware"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/services"
	"distro-backend/internal/timeutil"
)

type AssignmentHandler struct {
	Service *services.AssignmentService
	Repo    *repositories.AssignedStockRepository
}

func NewAssignmentHandler(service *services.AssignmentService, repo *repositories.AssignedStockRepository) *AssignmentHandler {
	return &AssignmentHandler{Service: service, Repo: repo}
}

func (h *AssignmentHandler) AssignStock(w http.ResponseWriter, r *http.Request) {
	var req models.AssignStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.Service.AssignStock(r.Context(), &req, userID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAssigned returns the assignment ledger for a route day. Query
// params: route_id, date, optional driver_id.
func (h *AssignmentHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	routeID, _ := strconv.Atoi(r.URL.Query().Get("route_id"))
	if routeID <= 0 {
		http.Error(w, "route_id is required", http.StatusBadRequest)
		return
	}
	date, err := timeutil.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "valid date (YYYY-MM-DD) is required", http.StatusBadRequest)
		return
	}

	var driverID *int
	if v := r.URL.Query().Get("driver_id"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			driverID = &n
		}
	}

	var rows []*models.AssignedStock
	if driverID != nil {
		rows, err = h.Repo.ListForBilling(r.Context(), driverID, routeID, date)
	} else {
		rows, err = h.Repo.ListForRoute(r.Context(), routeID, date)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*models.AssignedStock{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
