package models

import "time"

type Route struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Area      string    `json:"area"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRouteRequest struct {
	Name string `json:"name"`
	Area string `json:"area"`
}

type UpdateRouteRequest struct {
	Name     string `json:"name"`
	Area     string `json:"area"`
	IsActive *bool  `json:"is_active,omitempty"`
}
