package models

import "time"

// Day close triggers
const (
	CloseTriggerManual = "manual"
	CloseTriggerTimer  = "timer"
)

// Day close statuses
const (
	CloseStatusPending  = "pending"
	CloseStatusComplete = "complete"
	CloseStatusFailed   = "failed"
)

// DayClose is the persisted saga record for one load-out. The three
// remote steps (warehouse increments, stock return, assignment clear)
// have no cross-call transaction, so each step's outcome is marked
// individually; a failed close can be retried and resumes after the
// last completed step.
type DayClose struct {
	ID             int       `json:"id"`
	RouteID        int       `json:"route_id"`
	DriverID       *int      `json:"driver_id,omitempty"`
	Date           time.Time `json:"date"`
	Status         string    `json:"status"` // 'pending', 'complete', 'failed'
	StepIncrements bool      `json:"step_increments"`
	StepReturned   bool      `json:"step_returned"`
	StepCleared    bool      `json:"step_cleared"`
	StepVerified   bool      `json:"step_verified"`
	RemainingAfter int       `json:"remaining_after"` // Verification read, pcs; expected 0
	Trigger        string    `json:"trigger"`         // 'manual' or 'timer'
	LastError      string    `json:"last_error,omitempty"`
	ClosedByUserID *int      `json:"closed_by_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type LoadOutRequest struct {
	RouteID  int    `json:"route_id"`
	DriverID *int   `json:"driver_id,omitempty"`
	Date     string `json:"date"` // YYYY-MM-DD
}
