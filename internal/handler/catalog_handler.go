package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kiranahq/catalog-api/internal/cache"
	"github.com/kiranahq/catalog-api/internal/service"
	"github.com/kiranahq/catalog-api/internal/utils"
)

// CatalogProvider is the read surface the catalog handler consumes.
type CatalogProvider interface {
	GetProductBySlug(ctx context.Context, slug string) (*service.ProductDetail, error)
	Search(ctx context.Context, d cache.QueryDescriptor) (*service.SearchResult, error)
}

// CatalogHandler handles the catalog read endpoints.
type CatalogHandler struct {
	catalog CatalogProvider
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog CatalogProvider) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetProduct returns the product detail with breadcrumb for a slug.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	slug := c.Param("slug")

	detail, err := h.catalog.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		utils.ErrorFrom(c, err, "product not found")
		return
	}
	c.JSON(200, detail)
}

// Search returns one page of filtered products plus the facet set.
// Malformed numeric parameters are a client error, never silently coerced;
// out-of-range pages fall back to the documented defaults.
func (h *CatalogHandler) Search(c *gin.Context) {
	descriptor := cache.QueryDescriptor{Term: c.Query("q")}

	var ok bool
	if descriptor.BrandID, ok = idQuery(c, "brand_id"); !ok {
		return
	}
	if descriptor.CategoryID, ok = idQuery(c, "category_id"); !ok {
		return
	}

	sortPrice := c.Query("sort_price")
	if sortPrice != "" && sortPrice != "asc" && sortPrice != "desc" {
		utils.Error(c, 400, utils.ErrInvalidArgument.Error(), "sort_price must be asc or desc")
		return
	}
	descriptor.SortPrice = sortPrice

	if descriptor.Page, ok = intQuery(c, "page"); !ok {
		return
	}
	if descriptor.PageSize, ok = intQuery(c, "limit"); !ok {
		return
	}

	result, err := h.catalog.Search(c.Request.Context(), descriptor)
	if err != nil {
		utils.ErrorFrom(c, err, "search failed")
		return
	}
	c.JSON(200, result)
}

// idQuery parses an optional numeric id parameter. A missing parameter is
// nil; a non-numeric one writes a 400 and reports !ok.
func idQuery(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.Error(c, 400, utils.ErrInvalidArgument.Error(), name+" must be numeric")
		return nil, false
	}
	return &id, true
}

// intQuery parses an optional integer parameter, 0 when absent so the
// descriptor normalization applies the default.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		utils.Error(c, 400, utils.ErrInvalidArgument.Error(), name+" must be numeric")
		return 0, false
	}
	return n, true
}
