package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kiranahq/catalog-api/internal/models"
	"github.com/kiranahq/catalog-api/internal/utils"
)

// CategoryRepository handles data access for the category forest.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ByIDs returns the categories with the given ids, ordered by id. An empty
// input returns an empty slice without touching the database.
func (r *CategoryRepository) ByIDs(ctx context.Context, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `SELECT id, name, parent_id FROM categories WHERE id = ANY($1) ORDER BY id`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, q, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("categories by ids: %w", err)
	}
	return categories, nil
}

// Breadcrumb returns the root-to-leaf chain ending at the given category.
// The walk assumes the forest is acyclic; Create is the gate that keeps it so.
func (r *CategoryRepository) Breadcrumb(ctx context.Context, id int64) ([]models.Category, error) {
	const q = `WITH RECURSIVE chain AS (
            SELECT id, name, parent_id, 1 AS depth FROM categories WHERE id = $1
            UNION ALL
            SELECT c.id, c.name, c.parent_id, chain.depth + 1
            FROM categories c JOIN chain ON chain.parent_id = c.id
        )
        SELECT id, name, parent_id FROM chain ORDER BY depth DESC`

	var chain []models.Category
	if err := r.db.SelectContext(ctx, &chain, q, id); err != nil {
		return nil, fmt.Errorf("breadcrumb for category %d: %w", id, err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("category %d: %w", id, utils.ErrNotFound)
	}
	return chain, nil
}

// Create inserts a category under the given parent (nil for a root). The
// parent's ancestor chain is walked first: a missing parent or a chain that
// does not terminate is rejected, so the breadcrumb walk stays safe without
// a cycle guard of its own.
func (r *CategoryRepository) Create(ctx context.Context, name string, parentID *int64) (*models.Category, error) {
	if parentID != nil {
		if err := r.checkAncestry(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	const q = `INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING id`
	cat := &models.Category{Name: name, ParentID: parentID}
	if err := r.db.QueryRowxContext(ctx, q, name, parentID).Scan(&cat.ID); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// checkAncestry walks up from id and fails on a missing ancestor or on a
// repeated node (an existing cycle the new child would inherit).
func (r *CategoryRepository) checkAncestry(ctx context.Context, id int64) error {
	seen := make(map[int64]bool)
	current := id
	for {
		if seen[current] {
			return fmt.Errorf("%w: category %d is part of a parent cycle", utils.ErrInvalidArgument, id)
		}
		seen[current] = true

		var parentID *int64
		const q = `SELECT parent_id FROM categories WHERE id = $1`
		if err := r.db.GetContext(ctx, &parentID, q, current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: parent category %d not found", utils.ErrInvalidArgument, current)
			}
			return fmt.Errorf("walk category ancestry: %w", err)
		}
		if parentID == nil {
			return nil
		}
		current = *parentID
	}
}
