package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kiranahq/catalog-api/internal/models"
	"github.com/kiranahq/catalog-api/internal/utils"
)

// ProductWriter is the write side of the product repository.
type ProductWriter interface {
	SlugChecker
	CreateProduct(ctx context.Context, p *models.Product, images []models.ProductImage, categoryIDs []int64) error
}

// CategoryWriter creates categories with the cycle guard applied.
type CategoryWriter interface {
	Create(ctx context.Context, name string, parentID *int64) (*models.Category, error)
}

// CacheInvalidator is the invalidation entry point writes call after commit.
type CacheInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

// ImageInput is an image normalized at the HTTP boundary: encoded bytes
// plus a media type that defaults to JPEG when the client sent a bare
// base64 string.
type ImageInput struct {
	Data     string
	MimeType string
}

// CreateProductInput carries a create request. Price is in decimal major
// units as clients submit it; the service converts to integer cents.
type CreateProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Currency    string
	BrandID     *int64
	Images      []ImageInput
	CategoryIDs []int64
}

// AdminService owns catalog writes: it names the record via the slug
// assigner, persists through the repository, and invalidates the read
// caches afterwards.
type AdminService struct {
	products        ProductWriter
	categories      CategoryWriter
	categoryReader  CategoryStore
	brands          BrandStore
	slugger         *SlugAssigner
	invalidator     CacheInvalidator
	defaultCurrency string
}

// NewAdminService constructs an AdminService.
func NewAdminService(products ProductWriter, categories CategoryWriter, categoryReader CategoryStore, brands BrandStore, slugger *SlugAssigner, invalidator CacheInvalidator, defaultCurrency string) *AdminService {
	return &AdminService{
		products:        products,
		categories:      categories,
		categoryReader:  categoryReader,
		brands:          brands,
		slugger:         slugger,
		invalidator:     invalidator,
		defaultCurrency: defaultCurrency,
	}
}

// CreateProduct validates and stores a new product. A slug collision that
// races past the assignment probe comes back from the store as a conflict;
// assignment is re-run once against the fresh store state before giving up.
func (s *AdminService) CreateProduct(ctx context.Context, in CreateProductInput) (*ProductPayload, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", utils.ErrInvalidArgument)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", utils.ErrInvalidArgument)
	}

	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	images := make([]models.ProductImage, 0, len(in.Images))
	for _, img := range in.Images {
		if img.Data == "" {
			continue
		}
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		images = append(images, models.ProductImage{
			Data:     img.Data,
			MimeType: mimeType,
			Position: len(images),
		})
	}

	product := &models.Product{
		Title:       title,
		Description: in.Description,
		PriceCents:  in.Price.Shift(2).IntPart(),
		Currency:    currency,
		BrandID:     in.BrandID,
	}

	// One retry on slug conflict: a concurrent create can take the probed
	// slug between assignment and insert.
	for attempt := 0; attempt < 2; attempt++ {
		assigned, err := s.slugger.Assign(ctx, title)
		if err != nil {
			return nil, err
		}
		product.Slug = assigned

		err = s.products.CreateProduct(ctx, product, images, in.CategoryIDs)
		if err == nil {
			break
		}
		if errors.Is(err, utils.ErrConflict) && attempt == 0 {
			log.Warn().Str("slug", assigned).Msg("slug taken by concurrent write, reassigning")
			continue
		}
		return nil, err
	}

	s.invalidator.InvalidateCatalog(ctx)

	return s.createdPayload(ctx, product, images, in.CategoryIDs)
}

// CreateCategory creates a category under an optional parent. The
// repository rejects parents whose ancestor chain is missing a node or
// does not terminate.
func (s *AdminService) CreateCategory(ctx context.Context, name string, parentID *int64) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", utils.ErrInvalidArgument)
	}
	return s.categories.Create(ctx, name, parentID)
}

// createdPayload assembles the representation of a freshly created product.
func (s *AdminService) createdPayload(ctx context.Context, product *models.Product, images []models.ProductImage, categoryIDs []int64) (*ProductPayload, error) {
	payload := &ProductPayload{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       float64(product.PriceCents) / 100.0,
		Currency:    product.Currency,
		Slug:        product.Slug,
		Images:      []ImagePayload{},
		Categories:  []CategoryPayload{},
	}

	for _, img := range images {
		payload.Images = append(payload.Images, ImagePayload{
			Src:      fmt.Sprintf("data:%s;base64,%s", img.MimeType, img.Data),
			Position: img.Position,
		})
	}

	if product.BrandID != nil {
		brands, err := s.brands.ByIDs(ctx, []int64{*product.BrandID})
		if err != nil {
			return nil, err
		}
		if len(brands) > 0 {
			payload.Brand = &BrandPayload{ID: brands[0].ID, Name: brands[0].Name}
		}
	}

	// Unknown category ids were skipped at insert; reflect only the linked ones.
	categories, err := s.categoryReader.ByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		payload.Categories = append(payload.Categories, CategoryPayload{ID: c.ID, Name: c.Name})
	}

	return payload, nil
}
