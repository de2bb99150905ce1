package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	"distro-backend/internal/cache"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentService lets shops settle outstanding credit online through
// Razorpay. Order creation stores a transaction record; the webhook (or
// explicit verify call) marks it paid and reduces the shop's credit.
type PaymentService struct {
	Transactions *repositories.OnlineTransactionRepository
	Shops        *repositories.ShopRepository

	keyID         string
	keySecret     string
	webhookSecret string
}

func NewPaymentService(keyID, keySecret, webhookSecret string,
	transactions *repositories.OnlineTransactionRepository,
	shops *repositories.ShopRepository,
) *PaymentService {
	return &PaymentService{
		Transactions:  transactions,
		Shops:         shops,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

func (s *PaymentService) Enabled() bool {
	return s.keyID != "" && s.keySecret != ""
}

// CreateOrder creates a Razorpay order for a shop's dues and records
// the pending transaction.
func (s *PaymentService) CreateOrder(ctx context.Context, req *models.CreatePaymentOrderRequest) (*models.CreatePaymentOrderResponse, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("online payments are not configured")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	shop, err := s.Shops.Get(ctx, req.ShopID)
	if err != nil {
		return nil, fmt.Errorf("loading shop: %w", err)
	}

	client := razorpay.NewClient(s.keyID, s.keySecret)
	orderData := map[string]interface{}{
		"amount":   int(req.Amount * 100), // paise
		"currency": "INR",
		"receipt":  fmt.Sprintf("shop_%d", shop.ID),
		"notes": map[string]interface{}{
			"shop_id":   shop.ID,
			"shop_name": shop.Name,
		},
	}
	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}

	txn := &models.OnlineTransaction{
		ShopID:          shop.ID,
		RazorpayOrderID: orderID,
		Amount:          req.Amount,
		Status:          models.TxnStatusCreated,
	}
	if err := s.Transactions.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	return &models.CreatePaymentOrderResponse{
		OrderID: orderID,
		Amount:  req.Amount,
		KeyID:   s.keyID,
	}, nil
}

// VerifyPayment checks the checkout signature and settles the shop's
// credit. Safe to call more than once for the same order.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*models.OnlineTransaction, error) {
	if !s.verifySignature(orderID, paymentID, signature) {
		_ = s.Transactions.MarkFailed(ctx, orderID)
		return nil, fmt.Errorf("invalid payment signature")
	}
	return s.settle(ctx, orderID, paymentID)
}

// VerifyWebhookSignature validates the raw webhook body signature.
func (s *PaymentService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return true // not configured, skip
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessWebhook handles Razorpay webhook events.
func (s *PaymentService) ProcessWebhook(ctx context.Context, event string, payload map[string]interface{}) error {
	entity := paymentEntity(payload)
	orderID, _ := entity["order_id"].(string)
	if orderID == "" {
		return fmt.Errorf("missing order_id in webhook")
	}

	switch event {
	case "payment.captured":
		paymentID, _ := entity["id"].(string)
		_, err := s.settle(ctx, orderID, paymentID)
		return err
	case "payment.failed":
		return s.Transactions.MarkFailed(ctx, orderID)
	default:
		log.Printf("[Payments] unhandled webhook event: %s", event)
		return nil
	}
}

func (s *PaymentService) settle(ctx context.Context, orderID, paymentID string) (*models.OnlineTransaction, error) {
	txn, err := s.Transactions.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}
	if txn.Status == models.TxnStatusPaid {
		return txn, nil // already processed
	}

	if err := s.Transactions.MarkPaid(ctx, orderID, paymentID); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	if err := s.Shops.AdjustCreditBalance(ctx, txn.ShopID, -txn.Amount); err != nil {
		// Payment captured but dues not reduced; logged for manual fix.
		log.Printf("[Payments] credit settlement failed for shop=%d order=%s: %v", txn.ShopID, orderID, err)
	}
	cache.InvalidateShopCaches(ctx)

	txn, err = s.Transactions.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *PaymentService) verifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(data))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func paymentEntity(payload map[string]interface{}) map[string]interface{} {
	wrapper, ok := payload["payment"].(map[string]interface{})
	if !ok {
		wrapper = payload
	}
	entity, ok := wrapper["entity"].(map[string]interface{})
	if !ok {
		entity = wrapper
	}
	return entity
}
