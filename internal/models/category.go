package models

// Category is a node in the category forest. ParentID is nil for roots.
// The parent chain is kept acyclic at write time; read paths assume it.
type Category struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ParentID *int64 `db:"parent_id" json:"parentId,omitempty"`
}
