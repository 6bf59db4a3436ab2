package service

import (
	"context"

	"github.com/kiranahq/catalog-api/internal/repository"
)

// FacetSampleLimit bounds how many matching products the aggregator
// inspects. Exact faceting over an unbounded match set would dominate the
// request latency, so the facet set is computed from the first rows in
// default store order. Lossy by construction: with more matches than the
// cap, some valid facet values may be missing.
const FacetSampleLimit = 500

// FacetAggregator computes the categories and brands present among a
// bounded sample of the products matching a filter predicate.
type FacetAggregator struct {
	products   ProductStore
	categories CategoryStore
	brands     BrandStore
}

// NewFacetAggregator constructs a FacetAggregator.
func NewFacetAggregator(products ProductStore, categories CategoryStore, brands BrandStore) *FacetAggregator {
	return &FacetAggregator{products: products, categories: categories, brands: brands}
}

// Aggregate returns the facet set for a filter predicate. Each category and
// brand appears once no matter how many sampled products reference it, and
// display names come from the store's batch lookups so there is a single
// source of truth for them.
func (a *FacetAggregator) Aggregate(ctx context.Context, f repository.SearchFilter) (FacetSet, error) {
	categoryIDs, brandIDs, err := a.products.SampleFacetIDs(ctx, f, FacetSampleLimit)
	if err != nil {
		return FacetSet{}, err
	}

	facets := FacetSet{
		Categories: []CategoryPayload{},
		Brands:     []BrandPayload{},
	}

	categories, err := a.categories.ByIDs(ctx, categoryIDs)
	if err != nil {
		return FacetSet{}, err
	}
	for _, c := range categories {
		facets.Categories = append(facets.Categories, CategoryPayload{ID: c.ID, Name: c.Name})
	}

	brands, err := a.brands.ByIDs(ctx, brandIDs)
	if err != nil {
		return FacetSet{}, err
	}
	for _, b := range brands {
		facets.Brands = append(facets.Brands, BrandPayload{ID: b.ID, Name: b.Name})
	}

	return facets, nil
}
