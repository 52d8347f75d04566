package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"go.uber.org/zap"
)

var errNoCheckout = errors.New("no checkout in progress")

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors to HTTP status codes.
func handleError(w http.ResponseWriter, err error) {
	var (
		partial    *checkout.PartialFailureError
		incomplete *checkout.IncompleteAddressError
		quantity   *cart.QuantityError
		upstream   *api.StatusError
	)

	switch {
	case errors.As(err, &partial):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: "payment received but the order could not be recorded; retry to record it",
			Code:  "order_not_recorded",
			Details: map[string]string{
				"order_id":   partial.OrderRef,
				"payment_id": partial.PaymentRef,
			},
		})
	case errors.As(err, &incomplete):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   checkout.ErrIncompleteAddress.Error(),
			Code:    "incomplete_address",
			Details: map[string][]string{"missing": incomplete.Missing},
		})
	case errors.As(err, &quantity):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Code:    "invalid_quantity",
			Details: map[string]int{"max": quantity.Max},
		})

	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())

	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, errNoCheckout):
		respondError(w, http.StatusNotFound, "no_checkout", err.Error())
	case errors.Is(err, checkout.ErrPaymentInProgress):
		respondError(w, http.StatusConflict, "payment_in_progress", err.Error())
	case errors.Is(err, checkout.ErrCartLocked):
		respondError(w, http.StatusConflict, "cart_locked", err.Error())
	case errors.Is(err, checkout.ErrInvalidStep):
		respondError(w, http.StatusConflict, "invalid_step", err.Error())
	case errors.Is(err, checkout.ErrNothingToRetry):
		respondError(w, http.StatusConflict, "nothing_to_retry", err.Error())
	case errors.Is(err, checkout.ErrPaymentCancelled):
		respondError(w, http.StatusConflict, "payment_cancelled", err.Error())
	case errors.Is(err, checkout.ErrVerificationFailed):
		respondError(w, http.StatusPaymentRequired, "verification_failed", err.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		respondError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, checkout.ErrUnknownPaymentOrder):
		respondError(w, http.StatusNotFound, "unknown_payment_order", err.Error())
	case errors.Is(err, domain.ErrUnknownPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())

	case errors.Is(err, identity.ErrPasswordMismatch):
		respondError(w, http.StatusBadRequest, "password_mismatch", err.Error())
	case errors.Is(err, identity.ErrMissingCredentials):
		respondError(w, http.StatusBadRequest, "missing_credentials", err.Error())
	case errors.Is(err, identity.ErrRejected):
		respondError(w, http.StatusUnauthorized, "auth_rejected", err.Error())
	case errors.Is(err, identity.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "auth_unavailable", err.Error())

	case errors.Is(err, orders.ErrInvalidFilter):
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())

	case errors.Is(err, api.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "storefront api unavailable, try again shortly")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.As(err, &upstream):
		respondError(w, http.StatusBadGateway, "upstream_error", upstream.Error())
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
