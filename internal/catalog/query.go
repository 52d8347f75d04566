package catalog

import (
	"sort"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

const FeaturedCount = 8

// featuredRating is the rating at which a product is featured even when not flagged.
const featuredRating = 4.5

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating-desc"
	SortNewest    SortKey = "newest"
)

// ParseSortKey also accepts the option values of the home page select box.
// Anything unrecognised maps to SortNone.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price-asc", "price-low":
		return SortPriceAsc
	case "price-desc", "price-high":
		return SortPriceDesc
	case "rating-desc", "rating":
		return SortRating
	case "newest":
		return SortNewest
	default:
		return SortNone
	}
}

// Facets are optional filters combined with AND. Bounds are inclusive.
type Facets struct {
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
}

func (f Facets) match(p domain.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}

// FilterByQuery keeps products whose name, category or description contains
// text, ignoring case. An empty query returns the input unchanged.
func FilterByQuery(products []domain.Product, text string) []domain.Product {
	if strings.TrimSpace(text) == "" {
		return products
	}
	fold := cases.Fold()
	needle := fold.String(text)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Name), needle) ||
			strings.Contains(fold.String(p.Category), needle) ||
			strings.Contains(fold.String(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

func FilterByFacets(products []domain.Product, f Facets) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.match(p) {
			out = append(out, p)
		}
	}
	return out
}

// SortBy returns a stably sorted copy. SortNone keeps the input order.
func SortBy(products []domain.Product, key SortKey) []domain.Product {
	out := clone(products)
	var less func(a, b domain.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b domain.Product) bool { return a.Rating > b.Rating }
	case SortNewest:
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Featured returns the first n products that are flagged or highly rated.
func Featured(products []domain.Product, n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for _, p := range products {
		if len(out) == n {
			break
		}
		if p.IsFeatured || p.Rating >= featuredRating {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct non-empty categories in first-seen order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
