package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog record. Every collaborator boundary maps
// its own wire shape into this type.
type Product struct {
	ID             string
	Name           string
	Category       string
	Description    string
	Price          decimal.Decimal
	Discount       decimal.Decimal // percent, zero when absent
	Rating         float64
	NumReviews     int
	Images         []string
	Features       []string
	CountInStock   int
	Specifications map[string]string
	IsFeatured     bool
	CreatedAt      time.Time
}

// PrimaryImage returns the first image or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) InStock() bool {
	return p.CountInStock > 0
}
