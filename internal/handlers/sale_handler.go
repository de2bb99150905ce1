package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/services"
	"distro-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type SaleHandler struct {
	Billing *services.BillingService
	Repo    *repositories.SaleRepository
}

func NewSaleHandler(billing *services.BillingService, repo *repositories.SaleRepository) *SaleHandler {
	return &SaleHandler{Billing: billing, Repo: repo}
}

// CreateSale records a sale at route scope (admin back-office entry).
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sale, receipt, err := h.Billing.CreateSale(r.Context(), &req, nil)
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

// ListSales returns a route's sales for one date.
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
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

	sales, err := h.Repo.ListForDate(r.Context(), routeID, date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sales == nil {
		sales = []*models.Sale{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sales)
}

func (h *SaleHandler) GetByReceipt(w http.ResponseWriter, r *http.Request) {
	receiptNo := mux.Vars(r)["receipt_no"]
	sale, err := h.Repo.GetByReceiptNo(r.Context(), receiptNo)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sale)
}
