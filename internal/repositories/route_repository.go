package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepository struct {
	DB *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{DB: db}
}

func (r *RouteRepository) Create(ctx context.Context, rt *models.Route) error {
	query := `
		INSERT INTO routes(name, area, is_active)
		VALUES($1, $2, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query, rt.Name, rt.Area).Scan(&rt.ID, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt)
}

func (r *RouteRepository) Get(ctx context.Context, id int) (*models.Route, error) {
	rt := &models.Route{}
	query := `SELECT id, name, area, is_active, created_at, updated_at FROM routes WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, id).Scan(&rt.ID, &rt.Name, &rt.Area, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("route not found: %w", err)
	}
	return rt, nil
}

func (r *RouteRepository) List(ctx context.Context) ([]*models.Route, error) {
	query := `SELECT id, name, area, is_active, created_at, updated_at FROM routes ORDER BY name`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*models.Route
	for rows.Next() {
		rt := &models.Route{}
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Area, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *RouteRepository) Update(ctx context.Context, rt *models.Route) error {
	query := `
		UPDATE routes SET name = $1, area = $2, is_active = $3, updated_at = NOW() WHERE id = $4
	`
	_, err := r.DB.Exec(ctx, query, rt.Name, rt.Area, rt.IsActive, rt.ID)
	return err
}
