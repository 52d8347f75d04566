package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:          srv.URL + "/api/",
		Timeout:          time.Second,
		BreakerTimeout:   time.Minute,
		FailureThreshold: 2,
		HTTPClient:       srv.Client(),
	})
}

func TestListProducts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"p1","name":"Echo Dot","category":"Electronics","price":3499,"discount":10,
			 "rating":4.6,"numReviews":120,"images":["a.jpg","b.jpg"],"countInStock":4,
			 "specifications":{"weight":"300g","ports":2},"isFeatured":true,
			 "createdAt":"2024-05-01T10:00:00Z"},
			{"id":"p2","name":"Cable","price":199.5,"discount":null,"image":"c.jpg"}
		]`))
	}))

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	echo := products[0]
	assert.Equal(t, "p1", echo.ID)
	assert.True(t, echo.Price.Equal(decimal.NewFromInt(3499)))
	assert.True(t, echo.Discount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, echo.Images)
	assert.Equal(t, map[string]string{"weight": "300g", "ports": "2"}, echo.Specifications)
	assert.True(t, echo.IsFeatured)
	assert.Equal(t, 2024, echo.CreatedAt.Year())

	cable := products[1]
	assert.Equal(t, "p2", cable.ID)
	assert.True(t, cable.Discount.IsZero())
	assert.Equal(t, []string{"c.jpg"}, cable.Images)
	assert.Equal(t, "199.5", cable.Price.String())
}

func TestGetProduct_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/missing", r.URL.Path)
		http.Error(w, `{"message":"Product not found"}`, http.StatusNotFound)
	}))

	_, err := client.GetProduct(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	for i := 0; i < 5; i++ {
		_, err := client.GetProduct(context.Background(), "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	for i := 0; i < 2; i++ {
		_, err := client.ListProducts(context.Background())
		require.Error(t, err)
	}

	_, err := client.ListProducts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the server")
}

func TestCreatePaymentOrder(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/create-order", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, float64(1500), body["amount"])
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":150000,"currency":"INR"}`))
	}))

	po, err := client.CreatePaymentOrder(context.Background(), decimal.NewFromInt(1500), "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", po.ID)
	assert.Equal(t, "INR", po.Currency)
}

func TestVerifyPayment(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ok := req.Signature == "good"
		_ = json.NewEncoder(w).Encode(verifyPaymentResponse{Success: ok})
	}))

	ok, err := client.VerifyPayment(context.Background(), "order_1", "pay_1", "good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.VerifyPayment(context.Background(), "order_1", "pay_1", "forged")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateOrder_WireShape(t *testing.T) {
	var got createOrderRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"orderId":"ORD_1","status":"confirmed"}`))
	}))

	order := domain.Order{
		OrderID:   "ORD_1",
		PaymentID: "PAY_1",
		UserID:    "demo-user",
		Items: []domain.LineItem{
			{ID: "p1", Name: "Echo", UnitPrice: decimal.NewFromInt(500), Quantity: 3, Gift: true},
		},
		Total: decimal.NewFromInt(1500),
		ShippingAddress: domain.ShippingAddress{
			Name: "Asha", Street: "1 MG Road", City: "Pune", State: "MH", PostalCode: "411001", Phone: "9999999999",
		},
		PaymentMethod: domain.PaymentSimulated,
	}

	saved, err := client.CreateOrder(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, "demo", got.PaymentMethod)
	assert.Equal(t, "411001", got.ShippingAddress.Pincode)
	assert.Equal(t, "1 MG Road", got.ShippingAddress.Address)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)

	assert.Equal(t, "ORD_1", saved.OrderID)
	assert.Equal(t, "PAY_1", saved.PaymentID)
	assert.Equal(t, domain.OrderStatusConfirmed, saved.Status)
	assert.Equal(t, domain.PaymentSimulated, saved.PaymentMethod)
	assert.Len(t, saved.Items, 1)
}

func TestListUserOrders_PopulatedProducts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/user/demo-user", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"orderId":"ORD_A","paymentMethod":"razorpay","status":"shipped",
			 "items":[{"productId":{"_id":"p1","name":"Echo","image":"e.jpg"},"price":500,"quantity":1}],
			 "createdAt":"2025-01-02T00:00:00Z"},
			{"orderId":"ORD_B","items":[{"productId":"p2","name":"Cable","price":199,"quantity":2}]}
		]`))
	}))

	orders, err := client.ListUserOrders(context.Background(), "demo-user")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, domain.PaymentExternalGateway, orders[0].PaymentMethod)
	assert.Equal(t, domain.OrderStatusShipped, orders[0].Status)
	assert.Equal(t, "p1", orders[0].Items[0].ID)
	assert.Equal(t, "Echo", orders[0].Items[0].Name)
	assert.Equal(t, "e.jpg", orders[0].Items[0].ImageRef)

	assert.Equal(t, domain.OrderStatusPending, orders[1].Status)
	assert.Equal(t, "p2", orders[1].Items[0].ID)
	assert.Equal(t, 2, orders[1].Items[0].Quantity)
}

func TestUpsertUser_DefaultsName(t *testing.T) {
	var got userRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.UpsertUser(context.Background(), domain.UserProfile{
		Email: "a@b.c", ExternalID: "uid-1", AuthProvider: domain.AuthProviderGoogle,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", got.Name)
	assert.Equal(t, "uid-1", got.GoogleID)
	assert.Equal(t, "google", got.AuthProvider)
}

func TestCanceledContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListProducts(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
