// Package catalog loads the product list and derives the filtered, sorted
// and featured views shown on the storefront pages.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

const productsKey = "products"

// ProductSource is the remote product collaborator.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

type Service struct {
	source ProductSource
	cache  cache.CatalogCache
	sfg    singleflight.Group // collapses concurrent misses into one bulk read
	log    *zap.Logger
}

func NewService(source ProductSource, c cache.CatalogCache, log *zap.Logger) *Service {
	if c == nil {
		c = cache.NopCatalogCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{source: source, cache: c, log: log}
}

// FetchAll returns the whole catalog. The caller owns the returned slice.
func (s *Service) FetchAll(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do(productsKey, func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("catalog cache get failed", zap.Error(err))
		}

		products, err = s.source.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}

		go func(products []domain.Product) {
			if err := s.cache.Set(context.Background(), products); err != nil {
				s.log.Warn("catalog cache set failed", zap.Error(err))
			}
		}(products)

		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]domain.Product)), nil
}

// Get looks the product up in the cached list first and falls back to the
// single-product endpoint.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	if products, err := s.cache.Get(ctx); err == nil {
		for _, p := range products {
			if p.ID == id {
				return p, nil
			}
		}
	}

	p, err := s.source.GetProduct(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Invalidate drops the cached product list.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx)
}

func clone(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out
}
