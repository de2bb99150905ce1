package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"distro-backend/internal/cache"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type ShopHandler struct {
	Repo  *repositories.ShopRepository
	Sales *repositories.SaleRepository
}

func NewShopHandler(repo *repositories.ShopRepository, sales *repositories.SaleRepository) *ShopHandler {
	return &ShopHandler{Repo: repo, Sales: sales}
}

func (h *ShopHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req models.CreateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.RouteID <= 0 {
		http.Error(w, "name and route_id are required", http.StatusBadRequest)
		return
	}

	shop := &models.Shop{
		RouteID:   req.RouteID,
		Name:      req.Name,
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
		Address:   req.Address,
		IsActive:  true,
	}
	if err := h.Repo.Create(r.Context(), shop); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.InvalidateShopCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(shop)
}

func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if shops == nil {
		shops = []*models.Shop{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shops)
}

func (h *ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	shop, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shop)
}

func (h *ShopHandler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var req models.UpdateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	shop, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	shop.RouteID = req.RouteID
	shop.Name = req.Name
	shop.OwnerName = req.OwnerName
	shop.Phone = req.Phone
	shop.Address = req.Address
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}

	if err := h.Repo.Update(r.Context(), shop); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.InvalidateShopCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shop)
}

// ListShopSales returns the recent sale history (for the dues ledger).
func (h *ShopHandler) ListShopSales(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sales, err := h.Sales.ListByShop(r.Context(), id, limit)
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
