package domain

import "github.com/shopspring/decimal"

// LineItem is one product entry in the cart or the saved-for-later list.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref"`
	Quantity  int             `json:"quantity"`
	Gift      bool            `json:"gift"`
}

// LineFromProduct snapshots the display fields of p. Quantity is left at zero
// for the caller to set.
func LineFromProduct(p Product) LineItem {
	return LineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  p.PrimaryImage(),
	}
}
