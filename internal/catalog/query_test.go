package catalog

import (
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func rating(v float64) *float64 { return &v }

func fixture() []domain.Product {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	return []domain.Product{
		{ID: "a", Name: "Echo Dot", Category: "Electronics", Description: "Smart speaker", Price: decimal.NewFromInt(500), Rating: 4.0, CreatedAt: day(1)},
		{ID: "b", Name: "Kindle", Category: "Books", Description: "E-reader", Price: decimal.NewFromInt(100), Rating: 4.8, CreatedAt: day(5)},
		{ID: "c", Name: "Headphones", Category: "Electronics", Description: "Noise cancelling", Price: decimal.NewFromInt(300), Rating: 3.5, CreatedAt: day(3), IsFeatured: true},
		{ID: "d", Name: "Cookbook", Category: "Books", Description: "Recipes", Price: decimal.NewFromInt(300), Rating: 4.0, CreatedAt: day(2)},
	}
}

func TestFilterByQuery(t *testing.T) {
	products := fixture()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"a", "b", "c", "d"}},
		{"blank query returns all", "   ", []string{"a", "b", "c", "d"}},
		{"matches name ignoring case", "KINDLE", []string{"b"}},
		{"matches category", "electronics", []string{"a", "c"}},
		{"matches description", "speaker", []string{"a"}},
		{"no match", "laptop", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByQuery(products, tt.query)))
		})
	}
}

func TestFilterByFacets(t *testing.T) {
	products := fixture()

	tests := []struct {
		name   string
		facets Facets
		want   []string
	}{
		{"no facets", Facets{}, []string{"a", "b", "c", "d"}},
		{"category", Facets{Category: "Books"}, []string{"b", "d"}},
		{"min price inclusive", Facets{MinPrice: dec(300)}, []string{"a", "c", "d"}},
		{"max price inclusive", Facets{MaxPrice: dec(300)}, []string{"b", "c", "d"}},
		{"min rating inclusive", Facets{MinRating: rating(4)}, []string{"a", "b", "d"}},
		{"combined with AND", Facets{Category: "Electronics", MaxPrice: dec(400)}, []string{"c"}},
		{"empty range", Facets{MinPrice: dec(600)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByFacets(products, tt.facets)))
		})
	}
}

func TestSortBy(t *testing.T) {
	products := fixture()

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortPriceAsc, []string{"b", "c", "d", "a"}},
		{SortPriceDesc, []string{"a", "c", "d", "b"}},
		{SortRating, []string{"b", "a", "d", "c"}},
		{SortNewest, []string{"b", "c", "d", "a"}},
		{SortNone, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SortBy(products, tt.key)))
		})
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(products), "input untouched")
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSortKey("price-low"))
	assert.Equal(t, SortPriceDesc, ParseSortKey("price-high"))
	assert.Equal(t, SortRating, ParseSortKey("rating"))
	assert.Equal(t, SortNewest, ParseSortKey(" Newest "))
	assert.Equal(t, SortNone, ParseSortKey("featured"))
	assert.Equal(t, SortNone, ParseSortKey("bogus"))
}

func TestFeatured(t *testing.T) {
	products := fixture()
	assert.Equal(t, []string{"b", "c"}, ids(Featured(products, FeaturedCount)))
	assert.Equal(t, []string{"b"}, ids(Featured(products, 1)))
}

func TestCategories(t *testing.T) {
	products := append(fixture(), domain.Product{ID: "e"})
	assert.Equal(t, []string{"Electronics", "Books"}, Categories(products))
}
