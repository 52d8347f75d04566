package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"go.uber.org/zap"
)

// LocationHandler keeps the last chosen delivery location. Storage is
// best-effort, so failures degrade to an empty location.
type LocationHandler struct {
	scratch cache.ScratchStore
	timeout time.Duration
	log     *zap.Logger
}

func NewLocationHandler(scratch cache.ScratchStore, timeout time.Duration, log *zap.Logger) *LocationHandler {
	return &LocationHandler{
		scratch: scratch,
		timeout: timeout,
		log:     log,
	}
}

type LocationDTO struct {
	Location string `json:"location"`
}

// PUT /api/v1/location
func (h *LocationHandler) Set(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LocationDTO
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Location) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "location is required")
		return
	}
	loc := strings.TrimSpace(req.Location)
	if err := h.scratch.SaveLocation(ctx, sessionFrom(r.Context()).ID, loc); err != nil {
		h.log.Warn("save location failed", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, LocationDTO{Location: loc})
}

// GET /api/v1/location
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	loc, err := h.scratch.LoadLocation(ctx, sessionFrom(r.Context()).ID)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		h.log.Warn("load location failed", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, LocationDTO{Location: loc})
}
