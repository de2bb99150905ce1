package repositories

import (
	"context"
	"errors"
	"time"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DayCloseRepository struct {
	DB *pgxpool.Pool
}

func NewDayCloseRepository(db *pgxpool.Pool) *DayCloseRepository {
	return &DayCloseRepository{DB: db}
}

const dayCloseColumns = `id, route_id, driver_id, date, status,
	step_increments, step_returned, step_cleared, step_verified,
	remaining_after, trigger_source, last_error, closed_by_user_id, created_at, updated_at`

func scanDayClose(row pgx.Row) (*models.DayClose, error) {
	d := &models.DayClose{}
	err := row.Scan(
		&d.ID, &d.RouteID, &d.DriverID, &d.Date, &d.Status,
		&d.StepIncrements, &d.StepReturned, &d.StepCleared, &d.StepVerified,
		&d.RemainingAfter, &d.Trigger, &d.LastError, &d.ClosedByUserID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetByScope returns the close record for one (route, driver, date) scope,
// or nil when none exists yet.
func (r *DayCloseRepository) GetByScope(ctx context.Context, routeID int, driverID *int, date time.Time) (*models.DayClose, error) {
	query := `
		SELECT ` + dayCloseColumns + `
		FROM day_closes
		WHERE route_id = $1 AND date = $2
		  AND (($3::int IS NULL AND driver_id IS NULL) OR driver_id = $3)
	`
	d, err := scanDayClose(r.DB.QueryRow(ctx, query, routeID, date, driverID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *DayCloseRepository) Create(ctx context.Context, d *models.DayClose) error {
	query := `
		INSERT INTO day_closes(route_id, driver_id, date, status, trigger_source, closed_by_user_id)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		d.RouteID, d.DriverID, d.Date, d.Status, d.Trigger, d.ClosedByUserID,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// UpdateSteps persists the step markers after each saga step so a
// retried close can resume where the previous attempt stopped.
func (r *DayCloseRepository) UpdateSteps(ctx context.Context, d *models.DayClose) error {
	query := `
		UPDATE day_closes
		SET step_increments = $1, step_returned = $2, step_cleared = $3, step_verified = $4,
		    updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.DB.Exec(ctx, query,
		d.StepIncrements, d.StepReturned, d.StepCleared, d.StepVerified, d.ID)
	return err
}

func (r *DayCloseRepository) MarkComplete(ctx context.Context, id, remainingAfter int) error {
	query := `
		UPDATE day_closes
		SET status = $1, remaining_after = $2, last_error = '', updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.DB.Exec(ctx, query, models.CloseStatusComplete, remainingAfter, id)
	return err
}

func (r *DayCloseRepository) MarkFailed(ctx context.Context, id int, cause string) error {
	query := `
		UPDATE day_closes
		SET status = $1, last_error = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.DB.Exec(ctx, query, models.CloseStatusFailed, cause, id)
	return err
}

// ListForDate returns all close records for one business date.
func (r *DayCloseRepository) ListForDate(ctx context.Context, date time.Time) ([]*models.DayClose, error) {
	query := `
		SELECT ` + dayCloseColumns + `
		FROM day_closes
		WHERE date = $1
		ORDER BY route_id, COALESCE(driver_id, 0)
	`
	rows, err := r.DB.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closes []*models.DayClose
	for rows.Next() {
		d, err := scanDayClose(rows)
		if err != nil {
			return nil, err
		}
		closes = append(closes, d)
	}
	return closes, rows.Err()
}
