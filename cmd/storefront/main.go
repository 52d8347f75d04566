package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	// traceparent flows from the browser through to the storefront API
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()

	var (
		scratch      cache.ScratchStore = cache.NewMemoryScratch()
		catalogCache cache.CatalogCache = cache.NopCatalogCache{}
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		scratch = cache.NewRedisScratch(redisClient, cfg.SessionTTL)
		catalogCache = cache.NewRedisCatalogCache(redisClient, cfg.CatalogCacheTTL)
	} else {
		log.Info("REDIS_ADDR not set, keeping checkout scratch in memory")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		log.Info("publishing checkout events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	apiClient := api.New(api.Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.APITimeout,
		BreakerTimeout: cfg.BreakerTimeout,
		Logger:         log,
	})

	var provider identity.Provider
	if cfg.IdentityAPIKey != "" {
		provider = identity.NewRESTProvider(cfg.IdentityBaseURL, cfg.IdentityAPIKey, nil)
	} else {
		log.Warn("IDENTITY_API_KEY not set, sign-in is disabled")
	}

	m := metrics.NewServerMetrics("server")

	registry := session.NewRegistry(session.Deps{
		Scratch:        scratch,
		Orders:         apiClient,
		PaymentOrders:  apiClient,
		Verifier:       apiClient,
		Identity:       provider,
		Profiles:       apiClient,
		Publisher:      publisher,
		Logger:         log,
		MaxQuantity:    cfg.CartMaxQuantity,
		Currency:       cfg.Currency,
		RecordTimeout:  cfg.OrderRecordTimeout,
		RecordRetries:  cfg.OrderRecordRetries,
		RecordBackoff:  cfg.OrderRecordBackoff,
		SimulatedDelay: cfg.SimulatedPaymentDelay,
		PaymentWindow:  cfg.PaymentWindow,
		OnOutcome: func(outcome string) {
			m.CheckoutOutcomes.WithLabelValues(outcome).Inc()
		},
	}, cfg.SessionTTL, session.CleanupInterval)

	router := h.NewRouter(h.RouterDeps{
		Registry:           registry,
		Catalog:            catalog.NewService(apiClient, catalogCache, log),
		History:            orders.NewHistory(apiClient),
		Scratch:            scratch,
		Metrics:            m,
		Logger:             log,
		RequestTimeout:     cfg.RequestTimeout,
		PaymentWindow:      cfg.PaymentWindow,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		SecureCookie:       cfg.AppEnv != "dev",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := registry.Close(); err != nil {
		log.Warn("session registry close failed", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		log.Warn("event publisher close failed", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("storefront stopped")
}
