package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// CategoryRepository provides category lookup.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id=$1`, id).Scan(
		&category.ID,
		&category.Name,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
