package repositories

import (
	"context"
	"time"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpenseRepository struct {
	DB *pgxpool.Pool
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{DB: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO expenses(route_id, date, category, amount, notes, created_by_user_id)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		e.RouteID, e.Date, e.Category, e.Amount, e.Notes, e.CreatedByUserID,
	).Scan(&e.ID, &e.CreatedAt)
}

// List returns expenses in a date range, optionally filtered by route.
func (r *ExpenseRepository) List(ctx context.Context, routeID int, from, to time.Time) ([]*models.Expense, error) {
	query := `
		SELECT e.id, e.route_id, COALESCE(r.name, ''), e.date, e.category, e.amount, e.notes,
		       e.created_by_user_id, u.name, e.created_at
		FROM expenses e
		LEFT JOIN routes r ON r.id = e.route_id
		JOIN users u ON u.id = e.created_by_user_id
		WHERE e.date >= $1 AND e.date <= $2
		  AND ($3 = 0 OR e.route_id = $3)
		ORDER BY e.date DESC, e.created_at DESC
	`
	rows, err := r.DB.Query(ctx, query, from, to, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(
			&e.ID, &e.RouteID, &e.RouteName, &e.Date, &e.Category, &e.Amount, &e.Notes,
			&e.CreatedByUserID, &e.CreatedByName, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return err
}
