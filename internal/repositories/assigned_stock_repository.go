package repositories

import (
	"context"
	"fmt"
	"time"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignedStockRepository persists the assignment ledger: remaining
// stock per (product, route, driver|null, date). Quantities here are
// "remaining at query time"; billing decrements them as sales happen.
type AssignedStockRepository struct {
	DB *pgxpool.Pool
}

func NewAssignedStockRepository(db *pgxpool.Pool) *AssignedStockRepository {
	return &AssignedStockRepository{DB: db}
}

// Upsert adds quantity to an assignment row, creating it when absent.
// The scope is (product, route, driver|null, date).
func (r *AssignedStockRepository) Upsert(ctx context.Context, a *models.AssignedStock) error {
	query := `
		INSERT INTO assigned_stock(product_id, route_id, driver_id, date, box_qty, pcs_qty, status)
		VALUES($1, $2, $3, $4, $5, $6, 'assigned')
		ON CONFLICT (product_id, route_id, COALESCE(driver_id, 0), date) DO UPDATE
		SET box_qty = assigned_stock.box_qty + EXCLUDED.box_qty,
		    pcs_qty = assigned_stock.pcs_qty + EXCLUDED.pcs_qty,
		    status = 'assigned',
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		a.ProductID, a.RouteID, a.DriverID, a.Date, a.BoxQty, a.PcsQty,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// ListForBilling returns open assignment rows for an exact scope:
// driver-scoped rows when driverID is set, route-only rows (driver IS
// NULL) otherwise.
func (r *AssignedStockRepository) ListForBilling(ctx context.Context, driverID *int, routeID int, date time.Time) ([]*models.AssignedStock, error) {
	query := `
		SELECT a.id, a.product_id, p.name, a.route_id, a.driver_id, a.date,
		       a.box_qty, a.pcs_qty, a.status, a.created_at, a.updated_at
		FROM assigned_stock a JOIN products p ON p.id = a.product_id
		WHERE a.route_id = $1 AND a.date = $2 AND a.status = 'assigned'
		  AND (($3::int IS NULL AND a.driver_id IS NULL) OR a.driver_id = $3)
		ORDER BY p.name
	`
	return r.list(ctx, query, routeID, date, driverID)
}

// ListForRoute returns every open assignment row on a route day, both
// driver-scoped and route-scoped. Used for the load-out verification read.
func (r *AssignedStockRepository) ListForRoute(ctx context.Context, routeID int, date time.Time) ([]*models.AssignedStock, error) {
	query := `
		SELECT a.id, a.product_id, p.name, a.route_id, a.driver_id, a.date,
		       a.box_qty, a.pcs_qty, a.status, a.created_at, a.updated_at
		FROM assigned_stock a JOIN products p ON p.id = a.product_id
		WHERE a.route_id = $1 AND a.date = $2 AND a.status = 'assigned'
		ORDER BY p.name
	`
	return r.list(ctx, query, routeID, date)
}

func (r *AssignedStockRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.AssignedStock, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.AssignedStock
	for rows.Next() {
		a := &models.AssignedStock{}
		if err := rows.Scan(
			&a.ID, &a.ProductID, &a.ProductName, &a.RouteID, &a.DriverID, &a.Date,
			&a.BoxQty, &a.PcsQty, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// DeductSold subtracts sold quantity (in boxes and pieces) from the
// assignment row matching the scope. Driver-scoped row is preferred;
// falls back to the route-scoped row when the driver has none for this
// product.
func (r *AssignedStockRepository) DeductSold(ctx context.Context, productID int, driverID *int, routeID int, date time.Time, boxQty, pcsQty int) error {
	// Try the driver-scoped row first when a driver is known.
	if driverID != nil {
		tag, err := r.DB.Exec(ctx, `
			UPDATE assigned_stock
			SET box_qty = box_qty - $1, pcs_qty = pcs_qty - $2, updated_at = NOW()
			WHERE product_id = $3 AND route_id = $4 AND driver_id = $5 AND date = $6 AND status = 'assigned'
		`, boxQty, pcsQty, productID, routeID, *driverID, date)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
	}

	tag, err := r.DB.Exec(ctx, `
		UPDATE assigned_stock
		SET box_qty = box_qty - $1, pcs_qty = pcs_qty - $2, updated_at = NOW()
		WHERE product_id = $3 AND route_id = $4 AND driver_id IS NULL AND date = $5 AND status = 'assigned'
	`, boxQty, pcsQty, productID, routeID, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no assigned stock for product %d on route %d", productID, routeID)
	}
	return nil
}

// ReturnStock zeroes the remaining quantities for the scope. This is
// the authoritative ledger-side decrement of the load-out flow. A
// driver-scoped return also covers the route-scoped (driver IS NULL)
// rows, since those were counted into the driver's summary.
func (r *AssignedStockRepository) ReturnStock(ctx context.Context, driverID *int, routeID int, date time.Time) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE assigned_stock
		SET box_qty = 0, pcs_qty = 0, updated_at = NOW()
		WHERE route_id = $1 AND date = $2 AND status = 'assigned'
		  AND ($3::int IS NULL OR driver_id = $3 OR driver_id IS NULL)
	`, routeID, date, driverID)
	return err
}

// ClearDailyStock marks the day's assignment rows closed.
func (r *AssignedStockRepository) ClearDailyStock(ctx context.Context, driverID *int, routeID int, date time.Time) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE assigned_stock
		SET status = 'closed', updated_at = NOW()
		WHERE route_id = $1 AND date = $2 AND status = 'assigned'
		  AND (($3::int IS NULL) OR driver_id = $3 OR driver_id IS NULL)
	`, routeID, date, driverID)
	return err
}
