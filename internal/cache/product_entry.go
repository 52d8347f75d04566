package cache

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// productEntry is the cached JSON shape of a product.
type productEntry struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	Discount       decimal.Decimal   `json:"discount"`
	Rating         float64           `json:"rating"`
	NumReviews     int               `json:"num_reviews"`
	Images         []string          `json:"images,omitempty"`
	Features       []string          `json:"features,omitempty"`
	CountInStock   int               `json:"count_in_stock"`
	Specifications map[string]string `json:"specifications,omitempty"`
	IsFeatured     bool              `json:"is_featured"`
	CreatedAt      time.Time         `json:"created_at"`
}

func entryFromDomain(p domain.Product) productEntry {
	return productEntry{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Description:    p.Description,
		Price:          p.Price,
		Discount:       p.Discount,
		Rating:         p.Rating,
		NumReviews:     p.NumReviews,
		Images:         p.Images,
		Features:       p.Features,
		CountInStock:   p.CountInStock,
		Specifications: p.Specifications,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
	}
}

func (e productEntry) toDomain() domain.Product {
	return domain.Product{
		ID:             e.ID,
		Name:           e.Name,
		Category:       e.Category,
		Description:    e.Description,
		Price:          e.Price,
		Discount:       e.Discount,
		Rating:         e.Rating,
		NumReviews:     e.NumReviews,
		Images:         e.Images,
		Features:       e.Features,
		CountInStock:   e.CountInStock,
		Specifications: e.Specifications,
		IsFeatured:     e.IsFeatured,
		CreatedAt:      e.CreatedAt,
	}
}
