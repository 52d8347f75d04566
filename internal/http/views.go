package http

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

type LineView struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Image            string          `json:"image,omitempty"`
	Quantity         int             `json:"quantity"`
	Gift             bool            `json:"gift"`
	LineTotal        decimal.Decimal `json:"line_total"`
	LineTotalDisplay string          `json:"line_total_display"`
}

type CartView struct {
	Items           []LineView      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
	Count           int             `json:"count"`
	MaxQuantity     int             `json:"max_quantity"`
}

type SavedView struct {
	Items []LineView `json:"items"`
}

type ProductView struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Category               string            `json:"category"`
	Description            string            `json:"description"`
	Price                  decimal.Decimal   `json:"price"`
	PriceDisplay           string            `json:"price_display"`
	Discount               decimal.Decimal   `json:"discount"`
	DiscountedPrice        decimal.Decimal   `json:"discounted_price"`
	DiscountedPriceDisplay string            `json:"discounted_price_display"`
	Rating                 float64           `json:"rating"`
	NumReviews             int               `json:"num_reviews"`
	Images                 []string          `json:"images"`
	Features               []string          `json:"features,omitempty"`
	CountInStock           int               `json:"count_in_stock"`
	InStock                bool              `json:"in_stock"`
	Specifications         map[string]string `json:"specifications,omitempty"`
	IsFeatured             bool              `json:"is_featured"`
	CreatedAt              time.Time         `json:"created_at"`
}

type CheckoutView struct {
	checkout.Status
	TotalDisplay string                 `json:"total_display"`
	Methods      []domain.PaymentMethod `json:"payment_methods"`
	// PendingPayment is the order the widget should open while a hosted
	// payment waits for its callback.
	PendingPayment *domain.PaymentOrder `json:"pending_payment,omitempty"`
}

type PaymentStartedView struct {
	PaymentOrder domain.PaymentOrder `json:"payment_order"`
	Checkout     CheckoutView        `json:"checkout"`
}

type ConfirmationView struct {
	Receipt  domain.OrderReceipt `json:"receipt"`
	Checkout CheckoutView        `json:"checkout"`
}

type OrderView struct {
	OrderID         string                 `json:"order_id"`
	PaymentID       string                 `json:"payment_id"`
	Status          domain.OrderStatus     `json:"status"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	Items           []LineView             `json:"items"`
	Total           decimal.Decimal        `json:"total"`
	TotalDisplay    string                 `json:"total_display"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time              `json:"created_at"`
}

func lineViews(items []domain.LineItem) []LineView {
	out := make([]LineView, 0, len(items))
	for _, it := range items {
		total := pricing.LineTotal(it)
		out = append(out, LineView{
			ID:               it.ID,
			Name:             it.Name,
			UnitPrice:        it.UnitPrice,
			Image:            it.ImageRef,
			Quantity:         it.Quantity,
			Gift:             it.Gift,
			LineTotal:        total,
			LineTotalDisplay: pricing.FormatCurrency(total),
		})
	}
	return out
}

func cartView(c *cart.Store) CartView {
	snap := c.Snapshot()
	return CartView{
		Items:           lineViews(snap.Items),
		Subtotal:        snap.Subtotal,
		SubtotalDisplay: pricing.FormatCurrency(snap.Subtotal),
		Count:           snap.Count,
		MaxQuantity:     c.MaxQuantity(),
	}
}

func productView(p domain.Product) ProductView {
	discounted := pricing.DiscountedPrice(p.Price, p.Discount)
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductView{
		ID:                     p.ID,
		Name:                   p.Name,
		Category:               p.Category,
		Description:            p.Description,
		Price:                  p.Price,
		PriceDisplay:           pricing.FormatCurrency(p.Price),
		Discount:               p.Discount,
		DiscountedPrice:        discounted,
		DiscountedPriceDisplay: pricing.FormatCurrency(discounted),
		Rating:                 p.Rating,
		NumReviews:             p.NumReviews,
		Images:                 images,
		Features:               p.Features,
		CountInStock:           p.CountInStock,
		InStock:                p.InStock(),
		Specifications:         p.Specifications,
		IsFeatured:             p.IsFeatured,
		CreatedAt:              p.CreatedAt,
	}
}

func productViews(products []domain.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, productView(p))
	}
	return out
}

func checkoutView(f *checkout.Flow, hosted *checkout.HostedGateway) CheckoutView {
	st := f.Status()
	v := CheckoutView{
		Status:       st,
		TotalDisplay: pricing.FormatCurrency(st.Total),
		Methods:      domain.PaymentMethods(),
	}
	if st.Paying && hosted != nil {
		if po, ok := hosted.Current(); ok {
			v.PendingPayment = &po
		}
	}
	return v
}

func orderView(o domain.Order) OrderView {
	return OrderView{
		OrderID:         o.OrderID,
		PaymentID:       o.PaymentID,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		Items:           lineViews(o.Items),
		Total:           o.Total,
		TotalDisplay:    pricing.FormatCurrency(o.Total),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
}
