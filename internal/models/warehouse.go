package models

import "time"

// Movement directions. The values must match the warehouse_movements
// direction CHECK in the schema.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// WarehouseStock is the current box/pcs balance of one product.
type WarehouseStock struct {
	ProductID   int       `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"` // Joined from products
	BoxQty      int       `json:"box_qty"`
	PcsQty      int       `json:"pcs_qty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WarehouseMovement is one append-only ledger row. Note carries the
// provenance ("Route 3 driver load-out", "GRN#12", ...).
type WarehouseMovement struct {
	ID          int       `json:"id"`
	ProductID   int       `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Direction   string    `json:"direction"` // 'IN' or 'OUT'
	BoxQty      int       `json:"box_qty"`
	PcsQty      int       `json:"pcs_qty"`
	Note        string    `json:"note"`
	ActorUserID int       `json:"actor_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type AddWarehouseStockRequest struct {
	ProductID int    `json:"product_id"`
	BoxQty    int    `json:"box_qty"`
	PcsQty    int    `json:"pcs_qty"`
	Note      string `json:"note"`
}
