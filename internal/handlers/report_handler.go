package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"distro-backend/internal/services"
	"distro-backend/internal/timeutil"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

func (h *ReportHandler) DaySummaryPDF(w http.ResponseWriter, r *http.Request) {
	routeID, driverID, date, err := scopeParams(r)
	if routeID <= 0 || err != nil {
		http.Error(w, "route_id and a valid date are required", http.StatusBadRequest)
		return
	}

	data, err := h.Service.DaySummaryPDF(r.Context(), date, routeID, driverID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("day-summary-%s-route-%d.pdf", date.Format(timeutil.DateLayout), routeID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)
}

func (h *ReportHandler) DaySummaryCSV(w http.ResponseWriter, r *http.Request) {
	routeID, driverID, date, err := scopeParams(r)
	if routeID <= 0 || err != nil {
		http.Error(w, "route_id and a valid date are required", http.StatusBadRequest)
		return
	}

	data, err := h.Service.DaySummaryCSV(r.Context(), date, routeID, driverID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("day-summary-%s-route-%d.csv", date.Format(timeutil.DateLayout), routeID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)
}

func (h *ReportHandler) WarehouseMovementCSV(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.Atoi(r.URL.Query().Get("product_id"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	data, err := h.Service.WarehouseMovementCSV(r.Context(), productID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="warehouse-movements.csv"`)
	w.Write(data)
}
