package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/orders"
)

type OrdersHandler struct {
	history *orders.History
	timeout time.Duration
	now     func() time.Time
}

func NewOrdersHandler(history *orders.History, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		history: history,
		timeout: timeout,
		now:     time.Now,
	}
}

// GET /api/v1/orders?status=&window=
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter, err := orders.ParseFilter(q.Get("status"), q.Get("window"), h.now())
	if err != nil {
		handleError(w, err)
		return
	}

	list, err := h.history.List(ctx, sessionFrom(r.Context()).UserID(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	views := make([]OrderView, 0, len(list))
	for _, o := range list {
		views = append(views, orderView(o))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"orders": views,
		"count":  len(views),
	})
}
