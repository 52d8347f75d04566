// Package http is the JSON surface of the storefront.
package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Registry *session.Registry
	Catalog  *catalog.Service
	History  *orders.History
	Scratch  cache.ScratchStore
	Metrics  *metrics.ServerMetrics
	Logger   *zap.Logger

	RequestTimeout     time.Duration
	PaymentWindow      time.Duration
	MaxRequestBodySize int64
	SecureCookie       bool
	EventsHeartbeat    time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	if d.PaymentWindow <= 0 {
		d.PaymentWindow = 15 * time.Minute
	}
	if d.Scratch == nil {
		d.Scratch = cache.NewMemoryScratch()
	}
	if d.MaxRequestBodySize <= 0 {
		d.MaxRequestBodySize = 1 << 20 // 1MB
	}
	if d.EventsHeartbeat <= 0 {
		d.EventsHeartbeat = 15 * time.Second
	}

	cartHandler := NewCartHandler(d.Catalog, d.Metrics, d.RequestTimeout)
	productHandler := NewProductHandler(d.Catalog, d.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(d.RequestTimeout, d.PaymentWindow, d.Logger)
	ordersHandler := NewOrdersHandler(d.History, d.RequestTimeout)
	authHandler := NewAuthHandler(d.RequestTimeout)
	locationHandler := NewLocationHandler(d.Scratch, d.RequestTimeout, d.Logger)
	eventsHandler := NewEventsHandler(d.EventsHeartbeat, d.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if d.Metrics != nil {
		r.Use(Instrument(d.Metrics))
	}
	r.Use(BodyLimit(d.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(d.Registry, d.SecureCookie))

		// the event stream stays open for the page lifetime
		r.Get("/events", eventsHandler.Stream)

		// pay, its callback and retry wait on collaborators and bound their own
		// contexts; everything else answers within the request timeout
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(d.RequestTimeout))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Get("/featured", productHandler.Featured)
				r.Get("/{product_id}", productHandler.Get)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				r.Post("/items/{product_id}/gift", cartHandler.ToggleGift)
				r.Post("/items/{product_id}/save", cartHandler.SaveForLater)
			})

			r.Route("/saved", func(r chi.Router) {
				r.Get("/", cartHandler.GetSaved)
				r.Post("/{product_id}/move", cartHandler.MoveToCart)
				r.Delete("/{product_id}", cartHandler.RemoveSaved)
			})

			r.Get("/orders", ordersHandler.List)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", authHandler.SignUp)
				r.Post("/login", authHandler.SignIn)
				r.Post("/federated", authHandler.SignInFederated)
				r.Post("/logout", authHandler.SignOut)
				r.Get("/me", authHandler.Me)
			})

			r.Put("/location", locationHandler.Set)
			r.Get("/location", locationHandler.Get)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(d.RequestTimeout))
				r.Post("/", checkoutHandler.Begin)
				r.Get("/", checkoutHandler.Get)
				r.Put("/address", checkoutHandler.SubmitAddress)
				r.Post("/back", checkoutHandler.Back)
				r.Put("/payment-method", checkoutHandler.SelectPaymentMethod)
			})
			r.Post("/pay", checkoutHandler.Pay)
			r.Post("/pay/callback", checkoutHandler.PaymentCallback)
			r.Post("/retry", checkoutHandler.RetryRecord)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
