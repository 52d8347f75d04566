package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisScratch(client *redis.Client, ttl time.Duration) *RedisScratch {
	return &RedisScratch{
		client: client,
		ttl:    ttl,
	}
}

type RedisScratch struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisScratch) SaveAddress(ctx context.Context, sessionID string, addr domain.ShippingAddress) error {
	return r.setJSON(ctx, scratchKey(sessionID, "address"), addr)
}

func (r RedisScratch) LoadAddress(ctx context.Context, sessionID string) (domain.ShippingAddress, error) {
	var addr domain.ShippingAddress
	err := r.getJSON(ctx, scratchKey(sessionID, "address"), &addr)
	return addr, err
}

func (r RedisScratch) DeleteAddress(ctx context.Context, sessionID string) error {
	return r.del(ctx, scratchKey(sessionID, "address"))
}

func (r RedisScratch) SavePaymentMethod(ctx context.Context, sessionID string, m domain.PaymentMethod) error {
	return r.set(ctx, scratchKey(sessionID, "payment_method"), string(m))
}

func (r RedisScratch) LoadPaymentMethod(ctx context.Context, sessionID string) (domain.PaymentMethod, error) {
	v, err := r.get(ctx, scratchKey(sessionID, "payment_method"))
	if err != nil {
		return "", err
	}
	return domain.ParsePaymentMethod(string(v))
}

func (r RedisScratch) DeletePaymentMethod(ctx context.Context, sessionID string) error {
	return r.del(ctx, scratchKey(sessionID, "payment_method"))
}

func (r RedisScratch) SaveLocation(ctx context.Context, sessionID, location string) error {
	return r.set(ctx, scratchKey(sessionID, "location"), location)
}

func (r RedisScratch) LoadLocation(ctx context.Context, sessionID string) (string, error) {
	v, err := r.get(ctx, scratchKey(sessionID, "location"))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (r RedisScratch) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	return r.set(ctx, key, string(data))
}

func (r RedisScratch) getJSON(ctx context.Context, key string, v any) error {
	data, err := r.get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisScratch) set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisScratch) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r RedisScratch) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func scratchKey(sessionID, field string) string {
	return fmt.Sprintf("scratch:%s:%s", sessionID, field)
}

const catalogKey = "catalog:products"

func NewRedisCatalogCache(client *redis.Client, baseTTL time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCatalogCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCatalogCache) Get(ctx context.Context) ([]domain.Product, error) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entries []productEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}
	products := make([]domain.Product, len(entries))
	for i, e := range entries {
		products[i] = e.toDomain()
	}
	return products, nil
}

func (r RedisCatalogCache) Set(ctx context.Context, products []domain.Product) error {
	entries := make([]productEntry, len(products))
	for i, p := range products {
		entries[i] = entryFromDomain(p)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	// jitter keeps replicas from expiring the list together
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL)/5 + 1))
	if err := r.client.Set(ctx, catalogKey, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCatalogCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
