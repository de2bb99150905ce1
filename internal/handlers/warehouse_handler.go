package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"distro-backend/internal/cache"
	"distro-backend/internal/middleware"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
)

type WarehouseHandler struct {
	Repo *repositories.WarehouseRepository
}

func NewWarehouseHandler(repo *repositories.WarehouseRepository) *WarehouseHandler {
	return &WarehouseHandler{Repo: repo}
}

func (h *WarehouseHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.Repo.ListStock(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stock == nil {
		stock = []*models.WarehouseStock{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stock)
}

func (h *WarehouseHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req models.AddWarehouseStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID <= 0 || (req.BoxQty <= 0 && req.PcsQty <= 0) {
		http.Error(w, "product_id and a positive quantity are required", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	note := req.Note
	if note == "" {
		note = "Manual stock in"
	}
	if err := h.Repo.AddStock(r.Context(), req.ProductID, req.BoxQty, req.PcsQty, note, userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.InvalidateWarehouseCaches(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (h *WarehouseHandler) DeductStock(w http.ResponseWriter, r *http.Request) {
	var req models.AddWarehouseStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	note := req.Note
	if note == "" {
		note = "Manual stock out"
	}
	err := h.Repo.DeductStock(r.Context(), req.ProductID, req.BoxQty, req.PcsQty, note, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.InvalidateWarehouseCaches(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (h *WarehouseHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.Atoi(r.URL.Query().Get("product_id"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movements, err := h.Repo.ListMovements(r.Context(), productID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if movements == nil {
		movements = []*models.WarehouseMovement{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movements)
}
