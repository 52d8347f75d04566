package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *catalog.Service
	timeout time.Duration
}

func NewProductHandler(c *catalog.Service, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
	}
}

// GET /api/v1/products?q=&category=&min_price=&max_price=&min_rating=&sort=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	facets := catalog.Facets{Category: q.Get("category")}
	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_min_price", "min_price must be a number")
			return
		}
		facets.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_max_price", "max_price must be a number")
			return
		}
		facets.MaxPrice = &d
	}
	if v := q.Get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_min_rating", "min_rating must be a number")
			return
		}
		facets.MinRating = &f
	}

	products, err := h.catalog.FetchAll(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	products = catalog.FilterByQuery(products, q.Get("q"))
	products = catalog.FilterByFacets(products, facets)
	products = catalog.SortBy(products, catalog.ParseSortKey(q.Get("sort")))

	respondJSON(w, http.StatusOK, map[string]any{
		"products": productViews(products),
		"count":    len(products),
	})
}

// GET /api/v1/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.FetchAll(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	categories := catalog.Categories(products)
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"featured":   productViews(catalog.Featured(products, catalog.FeaturedCount)),
		"categories": categories,
	})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.Get(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, productView(p))
}
