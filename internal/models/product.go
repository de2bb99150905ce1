package models

import "time"

type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	BoxPrice  float64   `json:"box_price"`
	PcsPrice  float64   `json:"pcs_price"`   // 0 = derive from box_price / pcs_per_box
	PcsPerBox int       `json:"pcs_per_box"` // 0 = resolve via price ratio, else default 24
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name      string  `json:"name"`
	BoxPrice  float64 `json:"box_price"`
	PcsPrice  float64 `json:"pcs_price"`
	PcsPerBox int     `json:"pcs_per_box"`
}

type UpdateProductRequest struct {
	Name      string  `json:"name"`
	BoxPrice  float64 `json:"box_price"`
	PcsPrice  float64 `json:"pcs_price"`
	PcsPerBox int     `json:"pcs_per_box"`
	IsActive  *bool   `json:"is_active,omitempty"`
}
