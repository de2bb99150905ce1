package models

import "time"

type Expense struct {
	ID              int       `json:"id"`
	RouteID         *int      `json:"route_id,omitempty"`
	RouteName       string    `json:"route_name,omitempty"` // Joined from routes
	Date            time.Time `json:"date"`
	Category        string    `json:"category"` // fuel, food, repair, other
	Amount          float64   `json:"amount"`
	Notes           string    `json:"notes"`
	CreatedByUserID int       `json:"created_by_user_id"`
	CreatedByName   string    `json:"created_by_name,omitempty"` // Joined from users
	CreatedAt       time.Time `json:"created_at"`
}

type CreateExpenseRequest struct {
	RouteID  *int    `json:"route_id,omitempty"`
	Date     string  `json:"date"` // YYYY-MM-DD
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Notes    string  `json:"notes"`
}
