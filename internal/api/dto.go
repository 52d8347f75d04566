package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// productDTO mirrors the remote product document.
type productDTO struct {
	MongoID        string              `json:"_id"`
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Category       string              `json:"category"`
	Description    string              `json:"description"`
	Price          decimal.Decimal     `json:"price"`
	Discount       decimal.NullDecimal `json:"discount"`
	Rating         float64             `json:"rating"`
	NumReviews     int                 `json:"numReviews"`
	Images         []string            `json:"images"`
	Image          string              `json:"image"`
	Features       []string            `json:"features"`
	CountInStock   int                 `json:"countInStock"`
	Specifications map[string]any      `json:"specifications"`
	IsFeatured     bool                `json:"isFeatured"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func (p productDTO) toDomain() domain.Product {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	images := p.Images
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}
	var discount decimal.Decimal
	if p.Discount.Valid {
		discount = p.Discount.Decimal
	}
	return domain.Product{
		ID:             id,
		Name:           p.Name,
		Category:       p.Category,
		Description:    p.Description,
		Price:          p.Price,
		Discount:       discount,
		Rating:         p.Rating,
		NumReviews:     p.NumReviews,
		Images:         images,
		Features:       p.Features,
		CountInStock:   p.CountInStock,
		Specifications: flattenSpecs(p.Specifications),
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
	}
}

func flattenSpecs(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(in))
	for _, k := range keys {
		out[k] = fmt.Sprint(in[k])
	}
	return out
}

type addressDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

func addressFromDomain(a domain.ShippingAddress) addressDTO {
	return addressDTO{
		Name:    a.Name,
		Address: a.Street,
		City:    a.City,
		State:   a.State,
		Pincode: a.PostalCode,
		Phone:   a.Phone,
	}
}

func (a addressDTO) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:       a.Name,
		Street:     a.Address,
		City:       a.City,
		State:      a.State,
		PostalCode: a.Pincode,
		Phone:      a.Phone,
	}
}

type orderLineDTO struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Image    string      `json:"image,omitempty"`
	Gift     bool        `json:"gift,omitempty"`
}

type createOrderRequest struct {
	OrderID         string         `json:"orderId"`
	PaymentID       string         `json:"paymentId"`
	UserID          string         `json:"userId"`
	Items           []orderLineDTO `json:"items"`
	TotalAmount     json.Number    `json:"totalAmount"`
	ShippingAddress addressDTO     `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// orderItemDTO is a line of a stored order. productId is either the bare id
// or the populated product document.
type orderItemDTO struct {
	ProductID json.RawMessage `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type populatedProductDTO struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Image  string   `json:"image"`
	Images []string `json:"images"`
}

func (i orderItemDTO) toDomain() domain.LineItem {
	line := domain.LineItem{
		Name:      i.Name,
		UnitPrice: i.Price,
		ImageRef:  i.Image,
		Quantity:  i.Quantity,
	}
	if len(i.ProductID) == 0 {
		return line
	}
	var id string
	if err := json.Unmarshal(i.ProductID, &id); err == nil {
		line.ID = id
		return line
	}
	var populated populatedProductDTO
	if err := json.Unmarshal(i.ProductID, &populated); err == nil {
		line.ID = populated.ID
		if line.Name == "" {
			line.Name = populated.Name
		}
		if line.ImageRef == "" {
			line.ImageRef = populated.Image
			if line.ImageRef == "" && len(populated.Images) > 0 {
				line.ImageRef = populated.Images[0]
			}
		}
	}
	return line
}

type orderDTO struct {
	OrderID         string          `json:"orderId"`
	PaymentID       string          `json:"paymentId"`
	UserID          string          `json:"userId"`
	Items           []orderItemDTO  `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress addressDTO      `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (o orderDTO) toDomain() domain.Order {
	items := make([]domain.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, it.toDomain())
	}
	status := domain.OrderStatus(o.Status)
	if status == "" {
		status = domain.OrderStatusPending
	}
	return domain.Order{
		OrderID:         o.OrderID,
		PaymentID:       o.PaymentID,
		UserID:          o.UserID,
		Items:           items,
		Total:           o.TotalAmount,
		ShippingAddress: o.ShippingAddress.toDomain(),
		PaymentMethod:   paymentMethodFromWire(o.PaymentMethod),
		Status:          status,
		CreatedAt:       o.CreatedAt,
	}
}

// The remote API names the hosted gateway and the simulated path after the
// provider and the demo button.
func paymentMethodToWire(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentExternalGateway:
		return "razorpay"
	case domain.PaymentSimulated:
		return "demo"
	default:
		return string(m)
	}
}

func paymentMethodFromWire(s string) domain.PaymentMethod {
	switch s {
	case "razorpay":
		return domain.PaymentExternalGateway
	case "demo":
		return domain.PaymentSimulated
	}
	if m, err := domain.ParsePaymentMethod(s); err == nil {
		return m
	}
	return domain.PaymentMethod(s)
}

type paymentOrderRequest struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

type paymentOrderResponse struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type verifyPaymentResponse struct {
	Success bool `json:"success"`
}

// number renders an amount as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type userRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	GoogleID     string `json:"googleId"`
	AuthProvider string `json:"authProvider"`
}
