package models

import "time"

type Shop struct {
	ID            int       `json:"id"`
	RouteID       int       `json:"route_id"`
	RouteName     string    `json:"route_name,omitempty"` // Joined from routes
	Name          string    `json:"name"`
	OwnerName     string    `json:"owner_name"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	CreditBalance float64   `json:"credit_balance"` // Outstanding dues, settled via payments
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateShopRequest struct {
	RouteID   int    `json:"route_id"`
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type UpdateShopRequest struct {
	RouteID   int    `json:"route_id"`
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsActive  *bool  `json:"is_active,omitempty"`
}
