package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kiranahq/catalog-api/internal/models"
)

// BrandRepository handles data access for brands.
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository creates a new BrandRepository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// ByIDs returns the brands with the given ids, ordered by id. An empty
// input returns an empty slice without touching the database.
func (r *BrandRepository) ByIDs(ctx context.Context, ids []int64) ([]models.Brand, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `SELECT id, name FROM brands WHERE id = ANY($1) ORDER BY id`
	var brands []models.Brand
	if err := r.db.SelectContext(ctx, &brands, q, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("brands by ids: %w", err)
	}
	return brands, nil
}
