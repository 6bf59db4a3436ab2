package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestSearchKey(t *testing.T) {
	tests := []struct {
		name string
		d    QueryDescriptor
		want string
	}{
		{
			name: "zero descriptor gets defaults",
			d:    QueryDescriptor{},
			want: "search:q=:cat=-:brand=-:sort=-:page=1:limit=12",
		},
		{
			name: "full descriptor",
			d: QueryDescriptor{
				Term:       "shoes",
				BrandID:    int64Ptr(3),
				CategoryID: int64Ptr(7),
				SortPrice:  "asc",
				Page:       2,
				PageSize:   24,
			},
			want: "search:q=shoes:cat=7:brand=3:sort=asc:page=2:limit=24",
		},
		{
			name: "invalid sort treated as unsorted",
			d:    QueryDescriptor{SortPrice: "sideways"},
			want: "search:q=:cat=-:brand=-:sort=-:page=1:limit=12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchKey(tt.d))
		})
	}
}

func TestSearchKeyEquivalentDescriptors(t *testing.T) {
	// Absent and defaulted fields must normalize to the same key.
	pairs := []struct {
		name string
		a, b QueryDescriptor
	}{
		{"empty vs whitespace term", QueryDescriptor{Term: ""}, QueryDescriptor{Term: "  "}},
		{"page omitted vs page 1", QueryDescriptor{}, QueryDescriptor{Page: 1}},
		{"size omitted vs size 12", QueryDescriptor{}, QueryDescriptor{PageSize: 12}},
		{"negative page vs default", QueryDescriptor{Page: -3}, QueryDescriptor{Page: 1}},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, SearchKey(tt.a), SearchKey(tt.b))
			assert.Equal(t, FiltersKey(tt.a), FiltersKey(tt.b))
		})
	}
}

func TestFiltersKeyIgnoresSortAndPagination(t *testing.T) {
	base := QueryDescriptor{Term: "shoes", BrandID: int64Ptr(3)}
	paged := base
	paged.Page = 5
	paged.PageSize = 48
	paged.SortPrice = "desc"

	assert.Equal(t, FiltersKey(base), FiltersKey(paged))
	assert.NotEqual(t, SearchKey(base), SearchKey(paged))
}

func TestNamespacesNeverCollide(t *testing.T) {
	d := QueryDescriptor{Term: "shoes"}

	search := SearchKey(d)
	filters := FiltersKey(d)
	product := ProductKey("shoes")

	assert.NotEqual(t, search, filters)
	assert.NotEqual(t, search, product)
	assert.NotEqual(t, filters, product)

	// The namespace is the first positional segment of every key.
	assert.Equal(t, "search", search[:len("search")])
	assert.Equal(t, "filters", filters[:len("filters")])
	assert.Equal(t, "product", product[:len("product")])
}

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product:slug:red-shoes", ProductKey("red-shoes"))
}
