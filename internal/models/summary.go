package models

// SummaryItem is one product row of a day summary. It is derived on
// every request and never persisted. Start quantities are computed as
// remaining + sold, so start == sold + remaining holds by construction.
type SummaryItem struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	StartBox     int     `json:"start_box"`
	StartPcs     int     `json:"start_pcs"`
	SoldBox      int     `json:"sold_box"`
	SoldPcs      int     `json:"sold_pcs"`
	RemainingBox int     `json:"remaining_box"`
	RemainingPcs int     `json:"remaining_pcs"`
	BoxPrice     float64 `json:"box_price"`
	PcsPrice     float64 `json:"pcs_price"`
	TotalRevenue float64 `json:"total_revenue"`
}

// DaySummary is the reconciliation report for one (route, driver?, date)
// scope. HasAssignedStock gates the load-out action and the midnight
// auto-close timer.
type DaySummary struct {
	Date             string        `json:"date"` // YYYY-MM-DD
	RouteID          int           `json:"route_id"`
	DriverID         *int          `json:"driver_id,omitempty"`
	Items            []SummaryItem `json:"items"`
	TotalStartPcs    int           `json:"total_start_pcs"`
	TotalSoldPcs     int           `json:"total_sold_pcs"`
	TotalRemaining   int           `json:"total_remaining_pcs"`
	TotalRevenue     float64       `json:"total_revenue"`
	HasAssignedStock bool          `json:"has_assigned_stock"`
	NoData           bool          `json:"no_data"`
}
