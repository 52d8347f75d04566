package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	timeout       time.Duration
	paymentWindow time.Duration
	log           *zap.Logger
}

func NewCheckoutHandler(timeout, paymentWindow time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		timeout:       timeout,
		paymentWindow: paymentWindow,
		log:           log,
	}
}

type PaymentMethodRequestDTO struct {
	Method string `json:"method"`
}

// PaymentCallbackRequestDTO is posted by the browser when the payment widget
// closes, either with the signed result or dismissed.
type PaymentCallbackRequestDTO struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Dismissed bool   `json:"dismissed"`
	Error     string `json:"error"`
}

type payOutcome struct {
	receipt domain.OrderReceipt
	err     error
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	f, err := sess.BeginCheckout(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, checkoutView(f, sess.Hosted))
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(f, sess.Hosted))
}

// PUT /api/v1/checkout/address
func (h *CheckoutHandler) SubmitAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}
	var addr domain.ShippingAddress
	if err := decodeJSON(r, &addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := f.SubmitAddress(ctx, addr); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(f, sess.Hosted))
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}
	if err := f.Back(); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(f, sess.Hosted))
}

// PUT /api/v1/checkout/payment-method
func (h *CheckoutHandler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}
	var req PaymentMethodRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	m, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := f.SelectPaymentMethod(ctx, m); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(f, sess.Hosted))
}

// POST /api/v1/checkout/pay
//
// Offline and simulated methods settle within the request. The hosted
// gateway answers 202 with the payment order to open in the widget; the
// result arrives later on the callback endpoint.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}

	st := f.Status()
	if st.PaymentMethod.Hosted() && st.Unrecorded == nil {
		h.payHosted(w, r, sess, f)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	receipt, err := f.Pay(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConfirmationView{Receipt: receipt, Checkout: checkoutView(f, sess.Hosted)})
}

func (h *CheckoutHandler) payHosted(w http.ResponseWriter, r *http.Request, sess *session.Session, f *checkout.Flow) {
	if f.Paying() {
		// a lost 202 is answered again with the order already opened
		if po, ok := sess.Hosted.Current(); ok {
			respondJSON(w, http.StatusAccepted, PaymentStartedView{PaymentOrder: po, Checkout: checkoutView(f, sess.Hosted)})
			return
		}
		handleError(w, checkout.ErrPaymentInProgress)
		return
	}

	// The attempt outlives this request; it ends with the widget callback,
	// the payment window or the session.
	ctx, cancel := context.WithTimeout(sess.Context(), h.paymentWindow)
	done := make(chan payOutcome, 1)
	go func() {
		defer cancel()
		receipt, err := f.Pay(ctx)
		done <- payOutcome{receipt: receipt, err: err}
	}()

	for {
		select {
		case po := <-sess.Hosted.Opened():
			if cur, ok := sess.Hosted.Current(); !ok || cur.ID != po.ID {
				continue // left over from an earlier attempt
			}
			respondJSON(w, http.StatusAccepted, PaymentStartedView{PaymentOrder: po, Checkout: checkoutView(f, sess.Hosted)})
			return
		case out := <-done:
			if out.err != nil {
				handleError(w, out.err)
				return
			}
			respondJSON(w, http.StatusOK, ConfirmationView{Receipt: out.receipt, Checkout: checkoutView(f, sess.Hosted)})
			return
		case <-r.Context().Done():
			// Nobody is left to open the widget. An order that was already
			// announced stays reachable through GET /checkout; otherwise
			// the attempt is dropped so it does not hold the cart.
			if _, opened := sess.Hosted.Current(); !opened {
				cancel()
			}
			h.log.Warn("client left before the payment widget opened", zap.String("session_id", sess.ID))
			return
		}
	}
}

// POST /api/v1/checkout/pay/callback
func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}

	var req PaymentCallbackRequestDTO
	if err := decodeJSON(r, &req); err != nil || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "razorpay_order_id is required")
		return
	}

	var err error
	switch {
	case req.Dismissed:
		err = sess.Hosted.Dismiss(req.OrderID)
	case req.Error != "":
		err = sess.Hosted.Resolve(req.OrderID, checkout.PaymentResult{
			Outcome:  checkout.OutcomeFailed,
			OrderRef: req.OrderID,
			Reason:   req.Error,
		})
	default:
		err = sess.Hosted.Resolve(req.OrderID, checkout.PaymentResult{
			Outcome:    checkout.OutcomeSucceeded,
			OrderRef:   req.OrderID,
			PaymentRef: req.PaymentID,
			Signature:  req.Signature,
		})
	}
	if err != nil {
		handleError(w, err)
		return
	}

	select {
	case <-f.Settled():
	case <-ctx.Done():
		respondJSON(w, http.StatusAccepted, checkoutView(f, sess.Hosted))
		return
	}

	if err := f.Err(); err != nil {
		handleError(w, err)
		return
	}
	receipt, _ := f.Receipt()
	respondJSON(w, http.StatusOK, ConfirmationView{Receipt: receipt, Checkout: checkoutView(f, sess.Hosted)})
}

// POST /api/v1/checkout/retry
func (h *CheckoutHandler) RetryRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFrom(r.Context())
	f, ok := sess.Checkout()
	if !ok {
		handleError(w, errNoCheckout)
		return
	}
	receipt, err := f.RetryRecord(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConfirmationView{Receipt: receipt, Checkout: checkoutView(f, sess.Hosted)})
}
