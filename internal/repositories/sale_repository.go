package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SaleRepository struct {
	DB *pgxpool.Pool
}

func NewSaleRepository(db *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{DB: db}
}

// Create inserts a sale with its normalized line items as JSONB and
// stamps a receipt number derived from the new row id.
func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	itemsJSON, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal sale items: %w", err)
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sales(shop_id, route_id, driver_id, date, products_sold, total_amount, amount_paid)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		s.ShopID, s.RouteID, s.DriverID, s.Date, itemsJSON, s.TotalAmount, s.AmountPaid,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	s.ReceiptNo = fmt.Sprintf("R%s-%05d", s.Date.Format("20060102"), s.ID)
	if _, err := tx.Exec(ctx, `UPDATE sales SET receipt_no = $1 WHERE id = $2`, s.ReceiptNo, s.ID); err != nil {
		return fmt.Errorf("failed to stamp receipt number: %w", err)
	}

	return tx.Commit(ctx)
}

// ListForDate returns all sales on a route day, oldest first.
func (r *SaleRepository) ListForDate(ctx context.Context, routeID int, date time.Time) ([]*models.Sale, error) {
	query := `
		SELECT s.id, s.shop_id, sh.name, s.route_id, s.driver_id, s.date,
		       s.products_sold, s.total_amount, s.amount_paid, COALESCE(s.receipt_no, ''), s.created_at
		FROM sales s JOIN shops sh ON sh.id = s.shop_id
		WHERE s.route_id = $1 AND s.date = $2
		ORDER BY s.created_at
	`
	return r.list(ctx, query, routeID, date)
}

// ListByShop returns a shop's sales, newest first.
func (r *SaleRepository) ListByShop(ctx context.Context, shopID int, limit int) ([]*models.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT s.id, s.shop_id, sh.name, s.route_id, s.driver_id, s.date,
		       s.products_sold, s.total_amount, s.amount_paid, COALESCE(s.receipt_no, ''), s.created_at
		FROM sales s JOIN shops sh ON sh.id = s.shop_id
		WHERE s.shop_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, shopID, limit)
}

func (r *SaleRepository) GetByReceiptNo(ctx context.Context, receiptNo string) (*models.Sale, error) {
	query := `
		SELECT s.id, s.shop_id, sh.name, s.route_id, s.driver_id, s.date,
		       s.products_sold, s.total_amount, s.amount_paid, COALESCE(s.receipt_no, ''), s.created_at
		FROM sales s JOIN shops sh ON sh.id = s.shop_id
		WHERE s.receipt_no = $1
	`
	sales, err := r.list(ctx, query, receiptNo)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, fmt.Errorf("sale not found: %s", receiptNo)
	}
	return sales[0], nil
}

func (r *SaleRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Sale, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		s := &models.Sale{}
		var itemsJSON []byte
		if err := rows.Scan(
			&s.ID, &s.ShopID, &s.ShopName, &s.RouteID, &s.DriverID, &s.Date,
			&itemsJSON, &s.TotalAmount, &s.AmountPaid, &s.ReceiptNo, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
			return nil, fmt.Errorf("corrupt products_sold on sale %d: %w", s.ID, err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
