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

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// SearchFilter is the conjunctive filter predicate shared by Search and
// SampleFacetIDs. Nil ids impose no restriction; an empty term matches all.
type SearchFilter struct {
	Term       string
	BrandID    *int64
	CategoryID *int64
}

// SearchParams extends the filter with sorting and pagination.
type SearchParams struct {
	SearchFilter
	SortPrice string // "", "asc" or "desc"
	Page      int
	PageSize  int
}

// ProductRecord is a product with its relations resolved: brand name,
// ordered images and category ids.
type ProductRecord struct {
	models.Product
	BrandName   *string `db:"brand_name"`
	Images      []models.ProductImage
	CategoryIDs []int64
}

// baseWhere is the shared filter clause: $1 term, $2 brand id, $3 category id.
// Empty/NULL parameters disable the respective condition.
const baseWhere = `WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%')
        AND ($2::bigint IS NULL OR p.brand_id = $2)
        AND ($3::bigint IS NULL OR EXISTS (
            SELECT 1 FROM product_category pc
            WHERE pc.product_id = p.id AND pc.category_id = $3))`

const productColumns = `p.id, p.title, p.description, p.price_cents, p.currency,
        p.slug, p.brand_id, p.created_at, b.name AS brand_name`

// Search returns one page of products matching the filter plus the total
// match count. Unsorted queries use id ascending as the stable default
// order; price sorts break ties by id ascending so pagination stays
// deterministic. Page and page size below 1 fall back to 1 and 12.
func (r *ProductRepository) Search(ctx context.Context, params SearchParams) ([]ProductRecord, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 12
	}
	offset := (params.Page - 1) * params.PageSize

	countQuery := `SELECT COUNT(1) FROM products p ` + baseWhere
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, params.Term, params.BrandID, params.CategoryID); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var order string
	switch params.SortPrice {
	case "asc":
		order = `ORDER BY p.price_cents ASC, p.id ASC`
	case "desc":
		order = `ORDER BY p.price_cents DESC, p.id ASC`
	default:
		order = `ORDER BY p.id ASC`
	}

	listQuery := `SELECT ` + productColumns + `
        FROM products p
        LEFT JOIN brands b ON b.id = p.brand_id ` + baseWhere + `
        ` + order + ` LIMIT $4 OFFSET $5`

	var records []ProductRecord
	if err := r.db.SelectContext(ctx, &records, listQuery,
		params.Term, params.BrandID, params.CategoryID, params.PageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	if err := r.attachRelations(ctx, records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindBySlug returns a single product with relations, or utils.ErrNotFound.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*ProductRecord, error) {
	query := `SELECT ` + productColumns + `
        FROM products p
        LEFT JOIN brands b ON b.id = p.brand_id
        WHERE p.slug = $1`

	var rec ProductRecord
	if err := r.db.GetContext(ctx, &rec, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", slug, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("find product by slug: %w", err)
	}

	records := []ProductRecord{rec}
	if err := r.attachRelations(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// SampleFacetIDs scans the first limit matching products in default order
// and returns the distinct category and brand ids among them. The sample
// bound keeps aggregation cost flat no matter how large the match set is.
func (r *ProductRepository) SampleFacetIDs(ctx context.Context, f SearchFilter, limit int) (categoryIDs, brandIDs []int64, err error) {
	sampleQuery := `SELECT p.id, p.brand_id FROM products p ` + baseWhere + `
        ORDER BY p.id ASC LIMIT $4`

	rows := []struct {
		ID      int64  `db:"id"`
		BrandID *int64 `db:"brand_id"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, sampleQuery, f.Term, f.BrandID, f.CategoryID, limit); err != nil {
		return nil, nil, fmt.Errorf("sample products for facets: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	productIDs := make([]int64, 0, len(rows))
	seenBrands := make(map[int64]bool)
	for _, row := range rows {
		productIDs = append(productIDs, row.ID)
		if row.BrandID != nil && !seenBrands[*row.BrandID] {
			seenBrands[*row.BrandID] = true
			brandIDs = append(brandIDs, *row.BrandID)
		}
	}

	const catQuery = `SELECT DISTINCT category_id FROM product_category
        WHERE product_id = ANY($1) ORDER BY category_id`
	if err := r.db.SelectContext(ctx, &categoryIDs, catQuery, pq.Array(productIDs)); err != nil {
		return nil, nil, fmt.Errorf("sample categories for facets: %w", err)
	}
	return categoryIDs, brandIDs, nil
}

// SlugExists reports whether any product already uses the given slug.
func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, slug); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// CreateProduct inserts a product with its images and category links in one
// transaction. Unknown category ids are skipped; a slug collision maps to
// utils.ErrConflict so the caller can retry assignment, and an invalid
// brand reference to utils.ErrInvalidArgument.
func (r *ProductRepository) CreateProduct(ctx context.Context, p *models.Product, images []models.ProductImage, categoryIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create product: %w", err)
	}
	defer tx.Rollback()

	const insertProduct = `INSERT INTO products (title, description, price_cents, currency, slug, brand_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, insertProduct,
		p.Title, p.Description, p.PriceCents, p.Currency, p.Slug, p.BrandID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return translatePQError(err)
	}

	const insertImage = `INSERT INTO product_images (product_id, data, mime_type, position)
        VALUES ($1, $2, $3, $4)`
	for i := range images {
		images[i].ProductID = p.ID
		if _, err := tx.ExecContext(ctx, insertImage,
			p.ID, images[i].Data, images[i].MimeType, images[i].Position); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	if len(categoryIDs) > 0 {
		var known []int64
		const knownQuery = `SELECT id FROM categories WHERE id = ANY($1)`
		if err := tx.SelectContext(ctx, &known, knownQuery, pq.Array(categoryIDs)); err != nil {
			return fmt.Errorf("resolve categories: %w", err)
		}
		const insertLink = `INSERT INTO product_category (product_id, category_id)
            VALUES ($1, $2) ON CONFLICT DO NOTHING`
		for _, cid := range known {
			if _, err := tx.ExecContext(ctx, insertLink, p.ID, cid); err != nil {
				return fmt.Errorf("link category: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return translatePQError(err)
	}
	return nil
}

// attachRelations loads images and category ids for a page of products with
// two batch queries instead of one pair per row.
func (r *ProductRepository) attachRelations(ctx context.Context, records []ProductRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]int64, len(records))
	index := make(map[int64]*ProductRecord, len(records))
	for i := range records {
		ids[i] = records[i].ID
		index[records[i].ID] = &records[i]
	}

	var images []models.ProductImage
	const imageQuery = `SELECT id, product_id, data, mime_type, position
        FROM product_images WHERE product_id = ANY($1)
        ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &images, imageQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	for _, img := range images {
		rec := index[img.ProductID]
		rec.Images = append(rec.Images, img)
	}

	links := []struct {
		ProductID  int64 `db:"product_id"`
		CategoryID int64 `db:"category_id"`
	}{}
	const linkQuery = `SELECT product_id, category_id FROM product_category
        WHERE product_id = ANY($1) ORDER BY category_id`
	if err := r.db.SelectContext(ctx, &links, linkQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load product categories: %w", err)
	}
	for _, link := range links {
		rec := index[link.ProductID]
		rec.CategoryIDs = append(rec.CategoryIDs, link.CategoryID)
	}
	return nil
}

// translatePQError maps postgres constraint violations onto the service
// error taxonomy.
func translatePQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation (slug)
			return fmt.Errorf("%w: %s", utils.ErrConflict, pqErr.Constraint)
		case "23503": // foreign_key_violation (brand)
			return fmt.Errorf("%w: %s", utils.ErrInvalidArgument, pqErr.Constraint)
		}
	}
	return fmt.Errorf("create product: %w", err)
}
