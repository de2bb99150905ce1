package repositories

import (
	"context"
	"fmt"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products(name, box_price, pcs_price, pcs_per_box, is_active)
		VALUES($1, $2, $3, $4, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query,
		p.Name, p.BoxPrice, p.PcsPrice, p.PcsPerBox,
	).Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	p := &models.Product{}
	query := `
		SELECT id, name, box_price, pcs_price, pcs_per_box, is_active, created_at, updated_at
		FROM products WHERE id = $1
	`
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.BoxPrice, &p.PcsPrice, &p.PcsPerBox, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	return p, nil
}

// List returns the full catalog, active products first.
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, name, box_price, pcs_price, pcs_per_box, is_active, created_at, updated_at
		FROM products ORDER BY is_active DESC, name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.BoxPrice, &p.PcsPrice, &p.PcsPerBox, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, box_price = $2, pcs_price = $3, pcs_per_box = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.DB.Exec(ctx, query, p.Name, p.BoxPrice, p.PcsPrice, p.PcsPerBox, p.IsActive, p.ID)
	return err
}
