package models

import "time"

// Assigned stock statuses
const (
	AssignedStatusAssigned = "assigned"
	AssignedStatusClosed   = "closed"
)

// AssignedStock is one row of the assignment ledger: remaining (not yet
// sold) quantity of a product allocated to a route day. DriverID is nil
// for route-scoped rows; driver-scoped rows take precedence over them
// when both exist for the same product.
type AssignedStock struct {
	ID          int       `json:"id"`
	ProductID   int       `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"` // Joined from products
	RouteID     int       `json:"route_id"`
	DriverID    *int      `json:"driver_id,omitempty"`
	Date        time.Time `json:"date"`
	BoxQty      int       `json:"box_qty"`
	PcsQty      int       `json:"pcs_qty"`
	Status      string    `json:"status"` // 'assigned', 'closed'
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AssignStockItem struct {
	ProductID int `json:"product_id"`
	BoxQty    int `json:"box_qty"`
	PcsQty    int `json:"pcs_qty"`
}

type AssignStockRequest struct {
	RouteID  int               `json:"route_id"`
	DriverID *int              `json:"driver_id,omitempty"`
	Date     string            `json:"date"` // YYYY-MM-DD
	Items    []AssignStockItem `json:"items"`
}
