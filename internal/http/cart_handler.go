package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	catalog *catalog.Service
	metrics *metrics.ServerMetrics
	timeout time.Duration
}

func NewCartHandler(c *catalog.Service, m *metrics.ServerMetrics, timeout time.Duration) *CartHandler {
	return &CartHandler{
		catalog: c,
		metrics: m,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	respondJSON(w, http.StatusOK, cartView(sess.Cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > sess.Cart.MaxQuantity() {
		handleError(w, &cart.QuantityError{Quantity: req.Quantity, Max: sess.Cart.MaxQuantity()})
		return
	}

	product, err := h.catalog.Get(ctx, req.ProductID)
	if err != nil {
		handleError(w, err)
		return
	}

	sess.Cart.AddItem(product, req.Quantity)
	h.count("add")
	respondJSON(w, http.StatusCreated, cartView(sess.Cart))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil || req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	if err := sess.Cart.SetQuantity(chi.URLParam(r, "product_id"), *req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	h.count("set_quantity")
	respondJSON(w, http.StatusOK, cartView(sess.Cart))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}
	if sess.Cart.RemoveItem(chi.URLParam(r, "product_id")) {
		h.count("remove")
	}
	respondJSON(w, http.StatusOK, cartView(sess.Cart))
}

// POST /api/v1/cart/items/{product_id}/gift
func (h *CartHandler) ToggleGift(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}
	if _, err := sess.Cart.ToggleGift(chi.URLParam(r, "product_id")); err != nil {
		handleError(w, err)
		return
	}
	h.count("toggle_gift")
	respondJSON(w, http.StatusOK, cartView(sess.Cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}
	sess.Cart.Clear()
	h.count("clear")
	respondJSON(w, http.StatusOK, cartView(sess.Cart))
}

// GET /api/v1/saved
func (h *CartHandler) GetSaved(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	respondJSON(w, http.StatusOK, SavedView{Items: lineViews(sess.Saved.Items())})
}

// POST /api/v1/cart/items/{product_id}/save
func (h *CartHandler) SaveForLater(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}
	if sess.Saved.SaveForLater(chi.URLParam(r, "product_id")) {
		h.count("save_for_later")
	}
	respondJSON(w, http.StatusOK, h.both(sess.Cart, sess.Saved))
}

// POST /api/v1/saved/{product_id}/move
func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.CartLocked(); err != nil {
		handleError(w, err)
		return
	}
	if _, ok := sess.Saved.MoveToCart(chi.URLParam(r, "product_id")); ok {
		h.count("move_to_cart")
	}
	respondJSON(w, http.StatusOK, h.both(sess.Cart, sess.Saved))
}

// DELETE /api/v1/saved/{product_id}
func (h *CartHandler) RemoveSaved(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Saved.Remove(chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, SavedView{Items: lineViews(sess.Saved.Items())})
}

func (h *CartHandler) both(c *cart.Store, s *cart.SavedStore) map[string]any {
	return map[string]any{
		"cart":  cartView(c),
		"saved": SavedView{Items: lineViews(s.Items())},
	}
}

func (h *CartHandler) count(op string) {
	if h.metrics != nil {
		h.metrics.CartMutations.WithLabelValues(op).Inc()
	}
}
