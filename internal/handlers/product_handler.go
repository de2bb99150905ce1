package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"distro-backend/internal/cache"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type ProductHandler struct {
	Repo *repositories.ProductRepository
}

func NewProductHandler(repo *repositories.ProductRepository) *ProductHandler {
	return &ProductHandler{Repo: repo}
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.BoxPrice <= 0 {
		http.Error(w, "name and box_price are required", http.StatusBadRequest)
		return
	}

	p := &models.Product{
		Name:      req.Name,
		BoxPrice:  req.BoxPrice,
		PcsPrice:  req.PcsPrice,
		PcsPerBox: req.PcsPerBox,
		IsActive:  true,
	}
	if err := h.Repo.Create(r.Context(), p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.InvalidateProductCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	// Catalog is hot (every billing screen loads it), so serve from
	// cache when possible.
	if data, ok := cache.GetCached(r.Context(), cache.ProductCatalogKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	products, err := h.Repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	data, err := json.Marshal(products)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.SetCached(r.Context(), cache.ProductCatalogKey, data, 5*time.Minute)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	p, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var req models.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	p.Name = req.Name
	p.BoxPrice = req.BoxPrice
	p.PcsPrice = req.PcsPrice
	p.PcsPerBox = req.PcsPerBox
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := h.Repo.Update(r.Context(), p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.InvalidateProductCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
