package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kiranahq/catalog-api/internal/cache"
	"github.com/kiranahq/catalog-api/internal/config"
	"github.com/kiranahq/catalog-api/internal/models"
	"github.com/kiranahq/catalog-api/internal/repository"
)

// ProductStore is the read side of the product repository as the catalog
// service consumes it.
type ProductStore interface {
	FindBySlug(ctx context.Context, slug string) (*repository.ProductRecord, error)
	Search(ctx context.Context, params repository.SearchParams) ([]repository.ProductRecord, int, error)
	SampleFacetIDs(ctx context.Context, f repository.SearchFilter, limit int) (categoryIDs, brandIDs []int64, err error)
}

// CategoryStore resolves category display data and breadcrumbs.
type CategoryStore interface {
	ByIDs(ctx context.Context, ids []int64) ([]models.Category, error)
	Breadcrumb(ctx context.Context, id int64) ([]models.Category, error)
}

// BrandStore resolves brand display data.
type BrandStore interface {
	ByIDs(ctx context.Context, ids []int64) ([]models.Brand, error)
}

// KeyValueCache is the cache surface the catalog service needs. Get misses
// instead of failing and Set/DeleteMatching are best-effort.
type KeyValueCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeleteMatching(ctx context.Context, pattern string)
}

// BrandPayload is the outward-facing brand representation.
type BrandPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryPayload is the outward-facing category representation.
type CategoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ImagePayload carries an image as a data URI plus its display position.
type ImagePayload struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

// ProductPayload is the outward-facing product representation. Price is in
// major units; internally everything is integer cents.
type ProductPayload struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	Currency    string            `json:"currency"`
	Slug        string            `json:"slug"`
	Brand       *BrandPayload     `json:"brand"`
	Images      []ImagePayload    `json:"images"`
	Categories  []CategoryPayload `json:"categories"`
}

// ProductDetail is a product plus the breadcrumb of its first category.
type ProductDetail struct {
	ProductPayload
	Breadcrumb []CategoryPayload `json:"breadcrumb"`
}

// FacetSet lists the filterable attribute values present in a result set.
type FacetSet struct {
	Categories []CategoryPayload `json:"categories"`
	Brands     []BrandPayload    `json:"brands"`
}

// SearchResult is one cached page of search results with its facets.
type SearchResult struct {
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Items   []ProductPayload `json:"items"`
	Filters FacetSet         `json:"filters"`
}

// CatalogService coordinates the catalog read path: build key, check cache,
// compute from the store on a miss, write through, return. Concurrent
// misses on one key may compute twice; the writes are idempotent so the
// duplicate work is accepted rather than locked away.
type CatalogService struct {
	products   ProductStore
	categories CategoryStore
	brands     BrandStore
	cache      KeyValueCache
	facets     *FacetAggregator
	ttl        config.CacheConfig
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(products ProductStore, categories CategoryStore, brands BrandStore, kv KeyValueCache, facets *FacetAggregator, ttl config.CacheConfig) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		brands:     brands,
		cache:      kv,
		facets:     facets,
		ttl:        ttl,
	}
}

// GetProductBySlug returns the product detail payload, served from cache
// when possible. NotFound from the store propagates unchanged and is never
// cached.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	key := cache.ProductKey(slug)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var detail ProductDetail
		if err := json.Unmarshal(raw, &detail); err == nil {
			return &detail, nil
		}
		log.Debug().Str("key", key).Msg("discarding undecodable cache entry")
	}

	rec, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail, err := s.buildDetail(ctx, rec)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(detail); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl.ProductTTL)
	}
	return detail, nil
}

// Search returns one page of results plus facets. The page payload and the
// facet set are cached independently: facets depend only on the filter
// predicate, so every page and sort order of one filter set shares them.
// Empty result sets are never cached; a transient store anomaly must not
// pin a false negative for a full TTL.
func (s *CatalogService) Search(ctx context.Context, d cache.QueryDescriptor) (*SearchResult, error) {
	d = d.Normalize()

	key := cache.SearchKey(d)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var result SearchResult
		if err := json.Unmarshal(raw, &result); err == nil {
			return &result, nil
		}
		log.Debug().Str("key", key).Msg("discarding undecodable cache entry")
	}

	filter := repository.SearchFilter{
		Term:       d.Term,
		BrandID:    d.BrandID,
		CategoryID: d.CategoryID,
	}
	records, total, err := s.products.Search(ctx, repository.SearchParams{
		SearchFilter: filter,
		SortPrice:    d.SortPrice,
		Page:         d.Page,
		PageSize:     d.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.buildItems(ctx, records)
	if err != nil {
		return nil, err
	}

	facetSet, err := s.facetsFor(ctx, d, filter)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Total:   total,
		Page:    d.Page,
		Limit:   d.PageSize,
		Items:   items,
		Filters: facetSet,
	}

	if total > 0 && len(items) > 0 {
		if raw, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, key, raw, s.ttl.SearchTTL)
		}
	}
	return result, nil
}

// InvalidateCatalog drops every cached product, search page, and facet set.
// Deliberately coarse: after any catalog write, nothing stale survives, at
// the cost of evicting unrelated entries too. Safe to call repeatedly.
func (s *CatalogService) InvalidateCatalog(ctx context.Context) {
	s.cache.DeleteMatching(ctx, cache.NamespaceProduct+":*")
	s.cache.DeleteMatching(ctx, cache.NamespaceSearch+":*")
	s.cache.DeleteMatching(ctx, cache.NamespaceFilters+":*")
}

// facetsFor serves the facet set from its own cache, running the aggregator
// only when that cache misses.
func (s *CatalogService) facetsFor(ctx context.Context, d cache.QueryDescriptor, filter repository.SearchFilter) (FacetSet, error) {
	key := cache.FiltersKey(d)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var facetSet FacetSet
		if err := json.Unmarshal(raw, &facetSet); err == nil {
			return facetSet, nil
		}
		log.Debug().Str("key", key).Msg("discarding undecodable cache entry")
	}

	facetSet, err := s.facets.Aggregate(ctx, filter)
	if err != nil {
		return FacetSet{}, err
	}

	if raw, err := json.Marshal(facetSet); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl.FiltersTTL)
	}
	return facetSet, nil
}

// buildDetail assembles the detail payload: product fields plus the
// breadcrumb of its first category, empty when uncategorized.
func (s *CatalogService) buildDetail(ctx context.Context, rec *repository.ProductRecord) (*ProductDetail, error) {
	items, err := s.buildItems(ctx, []repository.ProductRecord{*rec})
	if err != nil {
		return nil, err
	}

	breadcrumb := []CategoryPayload{}
	if len(rec.CategoryIDs) > 0 {
		chain, err := s.categories.Breadcrumb(ctx, rec.CategoryIDs[0])
		if err != nil {
			return nil, err
		}
		for _, c := range chain {
			breadcrumb = append(breadcrumb, CategoryPayload{ID: c.ID, Name: c.Name})
		}
	}

	return &ProductDetail{ProductPayload: items[0], Breadcrumb: breadcrumb}, nil
}

// buildItems maps store records to payloads, resolving category names for
// the whole page with one batch lookup.
func (s *CatalogService) buildItems(ctx context.Context, records []repository.ProductRecord) ([]ProductPayload, error) {
	ids := make([]int64, 0)
	seen := make(map[int64]bool)
	for _, rec := range records {
		for _, cid := range rec.CategoryIDs {
			if !seen[cid] {
				seen[cid] = true
				ids = append(ids, cid)
			}
		}
	}

	categories, err := s.categories.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	items := make([]ProductPayload, 0, len(records))
	for _, rec := range records {
		items = append(items, productPayload(rec, names))
	}
	return items, nil
}

// productPayload maps one record onto the outward representation. Images
// become data URIs the way the web client consumes them.
func productPayload(rec repository.ProductRecord, categoryNames map[int64]string) ProductPayload {
	p := ProductPayload{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Price:       float64(rec.PriceCents) / 100.0,
		Currency:    rec.Currency,
		Slug:        rec.Slug,
		Images:      []ImagePayload{},
		Categories:  []CategoryPayload{},
	}
	if rec.BrandID != nil && rec.BrandName != nil {
		p.Brand = &BrandPayload{ID: *rec.BrandID, Name: *rec.BrandName}
	}
	for _, img := range rec.Images {
		p.Images = append(p.Images, ImagePayload{
			Src:      fmt.Sprintf("data:%s;base64,%s", img.MimeType, img.Data),
			Position: img.Position,
		})
	}
	for _, cid := range rec.CategoryIDs {
		p.Categories = append(p.Categories, CategoryPayload{ID: cid, Name: categoryNames[cid]})
	}
	return p
}
