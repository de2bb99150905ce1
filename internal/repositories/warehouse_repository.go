package repositories

import (
	"context"
	"errors"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientStock is returned when a deduction would leave the
// warehouse balance negative.
var ErrInsufficientStock = errors.New("insufficient warehouse stock")

type WarehouseRepository struct {
	DB *pgxpool.Pool
}

func NewWarehouseRepository(db *pgxpool.Pool) *WarehouseRepository {
	return &WarehouseRepository{DB: db}
}

// GetStock returns the current balance for a product (zero row if none).
func (r *WarehouseRepository) GetStock(ctx context.Context, productID int) (*models.WarehouseStock, error) {
	s := &models.WarehouseStock{ProductID: productID}
	query := `
		SELECT w.box_qty, w.pcs_qty, w.updated_at, p.name
		FROM warehouse_stock w JOIN products p ON p.id = w.product_id
		WHERE w.product_id = $1
	`
	err := r.DB.QueryRow(ctx, query, productID).Scan(&s.BoxQty, &s.PcsQty, &s.UpdatedAt, &s.ProductName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *WarehouseRepository) ListStock(ctx context.Context) ([]*models.WarehouseStock, error) {
	query := `
		SELECT w.product_id, p.name, w.box_qty, w.pcs_qty, w.updated_at
		FROM warehouse_stock w JOIN products p ON p.id = w.product_id
		ORDER BY p.name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stock []*models.WarehouseStock
	for rows.Next() {
		s := &models.WarehouseStock{}
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.BoxQty, &s.PcsQty, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stock = append(stock, s)
	}
	return stock, rows.Err()
}

// AddStock increments the warehouse balance and records an IN movement
// in one transaction. Note carries the provenance (e.g. "Route 3 driver
// load-out").
func (r *WarehouseRepository) AddStock(ctx context.Context, productID, boxQty, pcsQty int, note string, actorUserID int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO warehouse_stock(product_id, box_qty, pcs_qty, updated_at)
		VALUES($1, $2, $3, NOW())
		ON CONFLICT (product_id) DO UPDATE
		SET box_qty = warehouse_stock.box_qty + EXCLUDED.box_qty,
		    pcs_qty = warehouse_stock.pcs_qty + EXCLUDED.pcs_qty,
		    updated_at = NOW()
	`, productID, boxQty, pcsQty)
	if err != nil {
		return fmt.Errorf("failed to add stock: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO warehouse_movements(product_id, direction, box_qty, pcs_qty, note, actor_user_id)
		VALUES($1, $2, $3, $4, $5, $6)
	`, productID, models.MovementIn, boxQty, pcsQty, note, actorUserID)
	if err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}

	return tx.Commit(ctx)
}

// DeductStock decrements the warehouse balance and records an OUT
// movement. Fails with ErrInsufficientStock when the balance would go
// negative (checked row-locked inside the transaction).
func (r *WarehouseRepository) DeductStock(ctx context.Context, productID, boxQty, pcsQty int, note string, actorUserID int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var curBox, curPcs int
	err = tx.QueryRow(ctx, `
		SELECT box_qty, pcs_qty FROM warehouse_stock WHERE product_id = $1 FOR UPDATE
	`, productID).Scan(&curBox, &curPcs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsufficientStock
		}
		return err
	}
	// Boxes and loose pieces are tracked separately; no borrowing from
	// unopened boxes at warehouse level.
	if curBox < boxQty || curPcs < pcsQty {
		return ErrInsufficientStock
	}

	_, err = tx.Exec(ctx, `
		UPDATE warehouse_stock
		SET box_qty = box_qty - $1, pcs_qty = pcs_qty - $2, updated_at = NOW()
		WHERE product_id = $3
	`, boxQty, pcsQty, productID)
	if err != nil {
		return fmt.Errorf("failed to deduct stock: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO warehouse_movements(product_id, direction, box_qty, pcs_qty, note, actor_user_id)
		VALUES($1, $2, $3, $4, $5, $6)
	`, productID, models.MovementOut, boxQty, pcsQty, note, actorUserID)
	if err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}

	return tx.Commit(ctx)
}

// ListMovements returns recent ledger rows, newest first.
func (r *WarehouseRepository) ListMovements(ctx context.Context, productID int, limit int) ([]*models.WarehouseMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT m.id, m.product_id, p.name, m.direction, m.box_qty, m.pcs_qty, m.note, m.actor_user_id, m.created_at
		FROM warehouse_movements m JOIN products p ON p.id = m.product_id
		WHERE ($1 = 0 OR m.product_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.WarehouseMovement
	for rows.Next() {
		m := &models.WarehouseMovement{}
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.ProductName, &m.Direction, &m.BoxQty, &m.PcsQty,
			&m.Note, &m.ActorUserID, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
