package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"distro-backend/internal/middleware"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/services"
	"distro-backend/internal/timeutil"
)

type DayCloseHandler struct {
	Summary    *services.SummaryService
	LoadOut    *services.LoadOutService
	AutoCloser *services.AutoCloser
	Closes     *repositories.DayCloseRepository
}

func NewDayCloseHandler(summary *services.SummaryService, loadOut *services.LoadOutService, autoCloser *services.AutoCloser, closes *repositories.DayCloseRepository) *DayCloseHandler {
	return &DayCloseHandler{Summary: summary, LoadOut: loadOut, AutoCloser: autoCloser, Closes: closes}
}

func scopeParams(r *http.Request) (routeID int, driverID *int, date time.Time, err error) {
	routeID, _ = strconv.Atoi(r.URL.Query().Get("route_id"))
	if v := r.URL.Query().Get("driver_id"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			driverID = &n
		}
	}
	date, err = timeutil.ParseDate(r.URL.Query().Get("date"))
	return routeID, driverID, date, err
}

// GetSummary builds the reconciliation report for a route day. Viewing
// a summary with remaining stock arms the auto-close timer for that
// scope; viewing one without disarms it.
func (h *DayCloseHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	routeID, driverID, date, err := scopeParams(r)
	if routeID <= 0 || err != nil {
		http.Error(w, "route_id and a valid date are required", http.StatusBadRequest)
		return
	}

	summary, err := h.Summary.Build(r.Context(), date, routeID, driverID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.AutoCloser.Arm(routeID, driverID, date, summary.HasAssignedStock)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// TriggerLoadOut runs the close saga manually.
func (h *DayCloseHandler) TriggerLoadOut(w http.ResponseWriter, r *http.Request) {
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

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	rec, err := h.LoadOut.Execute(r.Context(), req.RouteID, req.DriverID, date, models.CloseTriggerManual, &userID)
	if err != nil {
		// The close record carries the per-step markers so the caller
		// can see exactly where it stopped.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
			"close": rec,
		})
		return
	}

	h.AutoCloser.Disarm(req.RouteID, req.DriverID, date)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// ListCloses returns all close records for one date.
func (h *DayCloseHandler) ListCloses(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "valid date (YYYY-MM-DD) is required", http.StatusBadRequest)
		return
	}

	closes, err := h.Closes.ListForDate(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if closes == nil {
		closes = []*models.DayClose{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(closes)
}
