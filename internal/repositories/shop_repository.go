package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ShopRepository struct {
	DB *pgxpool.Pool
}

func NewShopRepository(db *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{DB: db}
}

func (r *ShopRepository) Create(ctx context.Context, s *models.Shop) error {
	query := `
		INSERT INTO shops(route_id, name, owner_name, phone, address, credit_balance, is_active)
		VALUES($1, $2, $3, $4, $5, 0, TRUE)
		RETURNING id, credit_balance, is_active, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		s.RouteID, s.Name, s.OwnerName, s.Phone, s.Address,
	).Scan(&s.ID, &s.CreditBalance, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

func (r *ShopRepository) Get(ctx context.Context, id int) (*models.Shop, error) {
	s := &models.Shop{}
	query := `
		SELECT s.id, s.route_id, r.name, s.name, s.owner_name, s.phone, s.address,
		       s.credit_balance, s.is_active, s.created_at, s.updated_at
		FROM shops s
		JOIN routes r ON r.id = s.route_id
		WHERE s.id = $1
	`
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.RouteID, &s.RouteName, &s.Name, &s.OwnerName, &s.Phone, &s.Address,
		&s.CreditBalance, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("shop not found: %w", err)
	}
	return s, nil
}

func (r *ShopRepository) List(ctx context.Context) ([]*models.Shop, error) {
	return r.list(ctx, `
		SELECT s.id, s.route_id, r.name, s.name, s.owner_name, s.phone, s.address,
		       s.credit_balance, s.is_active, s.created_at, s.updated_at
		FROM shops s JOIN routes r ON r.id = s.route_id
		ORDER BY r.name, s.name
	`)
}

func (r *ShopRepository) ListByRoute(ctx context.Context, routeID int) ([]*models.Shop, error) {
	return r.list(ctx, `
		SELECT s.id, s.route_id, r.name, s.name, s.owner_name, s.phone, s.address,
		       s.credit_balance, s.is_active, s.created_at, s.updated_at
		FROM shops s JOIN routes r ON r.id = s.route_id
		WHERE s.route_id = $1 AND s.is_active = TRUE
		ORDER BY s.name
	`, routeID)
}

func (r *ShopRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Shop, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []*models.Shop
	for rows.Next() {
		s := &models.Shop{}
		if err := rows.Scan(
			&s.ID, &s.RouteID, &s.RouteName, &s.Name, &s.OwnerName, &s.Phone, &s.Address,
			&s.CreditBalance, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *ShopRepository) Update(ctx context.Context, s *models.Shop) error {
	query := `
		UPDATE shops
		SET route_id = $1, name = $2, owner_name = $3, phone = $4, address = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.DB.Exec(ctx, query, s.RouteID, s.Name, s.OwnerName, s.Phone, s.Address, s.IsActive, s.ID)
	return err
}

// AdjustCreditBalance applies a delta to the shop's outstanding dues.
// Positive delta = credit sale, negative = payment received.
func (r *ShopRepository) AdjustCreditBalance(ctx context.Context, shopID int, delta float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE shops SET credit_balance = credit_balance + $1, updated_at = NOW() WHERE id = $2`,
		delta, shopID)
	return err
}
