package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// Pagination defaults applied during descriptor normalization, before any
// key is built or any query runs.
const (
	DefaultPage     = 1
	DefaultPageSize = 12
)

// Key namespaces. The namespace is the first, positional segment of every
// key, so keys from different namespaces can never collide.
const (
	NamespaceProduct = "product"
	NamespaceSearch  = "search"
	NamespaceFilters = "filters"
)

// QueryDescriptor is the normalized description of a catalog search. It is
// the unit the cache keys are derived from; it is never persisted.
type QueryDescriptor struct {
	Term       string
	BrandID    *int64
	CategoryID *int64
	SortPrice  string
	Page       int
	PageSize   int
}

// Normalize returns a copy with defaults applied: pages and sizes below 1
// become the documented defaults and the term is trimmed, so semantically
// equivalent descriptors (term absent vs. empty, page omitted vs. 1)
// produce byte-identical keys.
func (d QueryDescriptor) Normalize() QueryDescriptor {
	d.Term = strings.TrimSpace(d.Term)
	if d.Page < 1 {
		d.Page = DefaultPage
	}
	if d.PageSize < 1 {
		d.PageSize = DefaultPageSize
	}
	if d.SortPrice != "asc" && d.SortPrice != "desc" {
		d.SortPrice = ""
	}
	return d
}

// FilterOnly strips sort and pagination, leaving just the filter predicate.
// All pages and sort orders of one filter set share the same facet key.
func (d QueryDescriptor) FilterOnly() QueryDescriptor {
	d.SortPrice = ""
	d.Page = DefaultPage
	d.PageSize = DefaultPageSize
	return d
}

// ProductKey builds the cache key for a single product looked up by slug.
func ProductKey(slug string) string {
	return NamespaceProduct + ":slug:" + slug
}

// SearchKey builds the cache key for one page of search results. Field
// order is fixed and absent fields serialize as "-" so positions never
// shift between keys.
func SearchKey(d QueryDescriptor) string {
	d = d.Normalize()
	return fmt.Sprintf("%s:q=%s:cat=%s:brand=%s:sort=%s:page=%d:limit=%d",
		NamespaceSearch, d.Term, idPart(d.CategoryID), idPart(d.BrandID), sortPart(d.SortPrice), d.Page, d.PageSize)
}

// FiltersKey builds the cache key for the facet set of a filter predicate,
// independent of sort and pagination.
func FiltersKey(d QueryDescriptor) string {
	d = d.Normalize().FilterOnly()
	return fmt.Sprintf("%s:q=%s:cat=%s:brand=%s",
		NamespaceFilters, d.Term, idPart(d.CategoryID), idPart(d.BrandID))
}

func idPart(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func sortPart(sort string) string {
	if sort == "" {
		return "-"
	}
	return sort
}
