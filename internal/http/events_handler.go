package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventsHandler pushes the header badge state (cart count and sign-in) to the
// page as server-sent events.
type EventsHandler struct {
	heartbeat time.Duration
	log       *zap.Logger
}

func NewEventsHandler(heartbeat time.Duration, log *zap.Logger) *EventsHandler {
	return &EventsHandler{heartbeat: heartbeat, log: log}
}

type CartSummaryView struct {
	Count           int             `json:"count"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
}

func cartSummary(snap cart.Snapshot) CartSummaryView {
	return CartSummaryView{
		Count:           snap.Count,
		Subtotal:        snap.Subtotal,
		SubtotalDisplay: pricing.FormatCurrency(snap.Subtotal),
	}
}

func authState(p *domain.Principal) AuthStateView {
	return AuthStateView{SignedIn: p != nil, Principal: p}
}

// GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming is not supported")
		return
	}
	sess := sessionFrom(r.Context())

	carts := make(chan cart.Snapshot, 1)
	unsubscribe := sess.Cart.Subscribe(func(snap cart.Snapshot) { offerLatest(carts, snap) })
	defer unsubscribe()
	auth, stopWatch := sess.Auth.Watch()
	defer stopWatch()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "cart", cartSummary(sess.Cart.Snapshot())); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case snap := <-carts:
			err = writeEvent(w, "cart", cartSummary(snap))
		case p, ok := <-auth:
			if !ok {
				return
			}
			err = writeEvent(w, "auth", authState(p))
		case <-ticker.C:
			_, err = io.WriteString(w, ": ping\n\n")
		}
		if err != nil {
			h.log.Debug("event stream closed", zap.String("session_id", sess.ID), zap.Error(err))
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

// offerLatest replaces whatever is buffered in ch with v without blocking.
func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
