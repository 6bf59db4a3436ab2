package models

import "time"

// Product represents a catalog product row. Prices are stored as integer
// minor units (cents/paise); currency formatting happens at the payload
// boundary, never in the store.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"priceCents"`
	Currency    string    `db:"currency" json:"currency"`
	Slug        string    `db:"slug" json:"slug"`
	BrandID     *int64    `db:"brand_id" json:"brandId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// ProductImage is owned by exactly one product and cascade-deletes with it.
// Data holds the base64-encoded image bytes; Position defines the stable
// display order (ties broken by insertion order).
type ProductImage struct {
	ID        int64  `db:"id" json:"-"`
	ProductID int64  `db:"product_id" json:"-"`
	Data      string `db:"data" json:"data"`
	MimeType  string `db:"mime_type" json:"mimeType"`
	Position  int    `db:"position" json:"position"`
}
