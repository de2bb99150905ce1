package models

import "time"

// Online transaction statuses
const (
	TxnStatusCreated = "created"
	TxnStatusPaid    = "paid"
	TxnStatusFailed  = "failed"
)

// OnlineTransaction tracks a Razorpay order for settling shop dues.
type OnlineTransaction struct {
	ID                int        `json:"id"`
	ShopID            int        `json:"shop_id"`
	RazorpayOrderID   string     `json:"razorpay_order_id"`
	RazorpayPaymentID *string    `json:"razorpay_payment_id,omitempty"`
	Amount            float64    `json:"amount"` // Rupees
	Status            string     `json:"status"` // 'created', 'paid', 'failed'
	CreatedAt         time.Time  `json:"created_at"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
}

type CreatePaymentOrderRequest struct {
	ShopID int     `json:"shop_id"`
	Amount float64 `json:"amount"`
}

type CreatePaymentOrderResponse struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
	KeyID   string  `json:"key_id"`
}
