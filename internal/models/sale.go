package models

import (
	"encoding/json"
	"time"
)

// Sale units
const (
	UnitBox = "box"
	UnitPcs = "pcs"
)

// SoldLineItem is one product line inside a sale. Price and Total are
// optional on the wire; when absent the catalog price for the declared
// unit applies. Total is authoritative when present.
type SoldLineItem struct {
	ProductID int      `json:"product_id"`
	Unit      string   `json:"unit"` // 'box' or 'pcs'
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
	Total     *float64 `json:"total,omitempty"`
}

type Sale struct {
	ID          int            `json:"id"`
	ShopID      int            `json:"shop_id"`
	ShopName    string         `json:"shop_name,omitempty"` // Joined from shops
	RouteID     int            `json:"route_id"`
	DriverID    *int           `json:"driver_id,omitempty"`
	Date        time.Time      `json:"date"`
	Items       []SoldLineItem `json:"products_sold"`
	TotalAmount float64        `json:"total_amount"`
	AmountPaid  float64        `json:"amount_paid"`
	ReceiptNo   string         `json:"receipt_no"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CreateSaleRequest carries the billing payload. ProductsSold is kept
// raw here because historical clients send it as an array, an object
// wrapper or a JSON-encoded string; it is normalized exactly once at
// the service boundary.
type CreateSaleRequest struct {
	ShopID       int             `json:"shop_id"`
	RouteID      int             `json:"route_id"`
	Date         string          `json:"date"` // YYYY-MM-DD
	ProductsSold json.RawMessage `json:"products_sold"`
	AmountPaid   float64         `json:"amount_paid"`
	Print        bool            `json:"print,omitempty"`
}
