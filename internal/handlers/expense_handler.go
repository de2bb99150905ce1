package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"distro-backend/internal/middleware"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
	"distro-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type ExpenseHandler struct {
	Repo *repositories.ExpenseRepository
}

func NewExpenseHandler(repo *repositories.ExpenseRepository) *ExpenseHandler {
	return &ExpenseHandler{Repo: repo}
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 || req.Category == "" {
		http.Error(w, "category and a positive amount are required", http.StatusBadRequest)
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

	expense := &models.Expense{
		RouteID:         req.RouteID,
		Date:            date,
		Category:        req.Category,
		Amount:          req.Amount,
		Notes:           req.Notes,
		CreatedByUserID: userID,
	}
	if err := h.Repo.Create(r.Context(), expense); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(expense)
}

// ListExpenses filters by optional route_id and a from/to date range
// (defaulting to today).
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	routeID, _ := strconv.Atoi(r.URL.Query().Get("route_id"))

	from := timeutil.StartOfDay(timeutil.Now())
	to := from
	if v := r.URL.Query().Get("from"); v != "" {
		if d, err := timeutil.ParseDate(v); err == nil {
			from = d
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if d, err := timeutil.ParseDate(v); err == nil {
			to = d
		}
	}

	expenses, err := h.Repo.List(r.Context(), routeID, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(expenses)
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
