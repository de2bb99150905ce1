package repositories

import (
	"context"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

func (r *OnlineTransactionRepository) Create(ctx context.Context, t *models.OnlineTransaction) error {
	query := `
		INSERT INTO online_transactions(shop_id, razorpay_order_id, amount, status)
		VALUES($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		t.ShopID, t.RazorpayOrderID, t.Amount, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *OnlineTransactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OnlineTransaction, error) {
	query := `
		SELECT id, shop_id, razorpay_order_id, razorpay_payment_id, amount, status, created_at, paid_at
		FROM online_transactions
		WHERE razorpay_order_id = $1
	`
	t := &models.OnlineTransaction{}
	err := r.DB.QueryRow(ctx, query, orderID).Scan(
		&t.ID, &t.ShopID, &t.RazorpayOrderID, &t.RazorpayPaymentID,
		&t.Amount, &t.Status, &t.CreatedAt, &t.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *OnlineTransactionRepository) MarkPaid(ctx context.Context, orderID, paymentID string) error {
	query := `
		UPDATE online_transactions
		SET status = $1, razorpay_payment_id = $2, paid_at = NOW()
		WHERE razorpay_order_id = $3 AND status = $4
	`
	_, err := r.DB.Exec(ctx, query, models.TxnStatusPaid, paymentID, orderID, models.TxnStatusCreated)
	return err
}

func (r *OnlineTransactionRepository) MarkFailed(ctx context.Context, orderID string) error {
	query := `
		UPDATE online_transactions
		SET status = $1
		WHERE razorpay_order_id = $2 AND status = $3
	`
	_, err := r.DB.Exec(ctx, query, models.TxnStatusFailed, orderID, models.TxnStatusCreated)
	return err
}

func (r *OnlineTransactionRepository) ListByShop(ctx context.Context, shopID int) ([]*models.OnlineTransaction, error) {
	query := `
		SELECT id, shop_id, razorpay_order_id, razorpay_payment_id, amount, status, created_at, paid_at
		FROM online_transactions
		WHERE shop_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.OnlineTransaction
	for rows.Next() {
		t := &models.OnlineTransaction{}
		if err := rows.Scan(
			&t.ID, &t.ShopID, &t.RazorpayOrderID, &t.RazorpayPaymentID,
			&t.Amount, &t.Status, &t.CreatedAt, &t.PaidAt,
		); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
