package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CreateOrder persists a paid order. Fields missing from the response are
// taken from the request.
func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	items := make([]orderLineDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderLineDTO{
			ID:       it.ID,
			Name:     it.Name,
			Price:    number(it.UnitPrice),
			Quantity: it.Quantity,
			Image:    it.ImageRef,
			Gift:     it.Gift,
		})
	}
	req := createOrderRequest{
		OrderID:         o.OrderID,
		PaymentID:       o.PaymentID,
		UserID:          o.UserID,
		Items:           items,
		TotalAmount:     number(o.Total),
		ShippingAddress: addressFromDomain(o.ShippingAddress),
		PaymentMethod:   paymentMethodToWire(o.PaymentMethod),
	}

	var resp orderDTO
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return domain.Order{}, err
	}

	saved := resp.toDomain()
	if saved.OrderID == "" {
		saved.OrderID = o.OrderID
	}
	if saved.PaymentID == "" {
		saved.PaymentID = o.PaymentID
	}
	if saved.UserID == "" {
		saved.UserID = o.UserID
	}
	if len(saved.Items) == 0 {
		saved.Items = o.Items
	}
	if saved.Total.IsZero() {
		saved.Total = o.Total
	}
	if saved.ShippingAddress == (domain.ShippingAddress{}) {
		saved.ShippingAddress = o.ShippingAddress
	}
	if resp.PaymentMethod == "" {
		saved.PaymentMethod = o.PaymentMethod
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = o.CreatedAt
	}
	return saved, nil
}

func (c *Client) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var dtos []orderDTO
	if err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, &dtos); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}
