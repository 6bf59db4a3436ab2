package models

// Brand is a product brand. Names are unique; a product references at most
// one brand.
type Brand struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
