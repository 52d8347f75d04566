// Package orders lists the past orders of a user.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrInvalidFilter = errors.New("invalid order filter")

type Source interface {
	ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// Filter narrows the history. Zero values match everything; Until is exclusive.
type Filter struct {
	Status domain.OrderStatus
	Since  time.Time
	Until  time.Time
}

func (f Filter) match(o domain.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !o.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// ParseFilter reads the status and time window selectors of the orders page.
// status is "all" or an order status. window is "all", a day count ("30",
// "30d") or a four-digit calendar year.
func ParseFilter(status, window string, now time.Time) (Filter, error) {
	var f Filter

	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "", "all":
	case string(domain.OrderStatusPending), string(domain.OrderStatusConfirmed),
		string(domain.OrderStatusShipped), string(domain.OrderStatusDelivered),
		string(domain.OrderStatusCancelled):
		f.Status = domain.OrderStatus(s)
	default:
		return Filter{}, fmt.Errorf("%w: status %q", ErrInvalidFilter, status)
	}

	w := strings.ToLower(strings.TrimSpace(window))
	switch {
	case w == "" || w == "all":
	case len(w) == 4 && isDigits(w):
		year, _ := strconv.Atoi(w)
		f.Since = time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		f.Until = f.Since.AddDate(1, 0, 0)
	default:
		days, err := strconv.Atoi(strings.TrimSuffix(w, "d"))
		if err != nil || days <= 0 {
			return Filter{}, fmt.Errorf("%w: window %q", ErrInvalidFilter, window)
		}
		f.Since = now.AddDate(0, 0, -days)
	}
	return f, nil
}

type History struct {
	source Source
}

func NewHistory(source Source) *History {
	return &History{source: source}
}

// List returns the matching orders of userID, newest first.
func (h *History) List(ctx context.Context, userID string, f Filter) ([]domain.Order, error) {
	all, err := h.source.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders of %s: %w", userID, err)
	}
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if f.match(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
