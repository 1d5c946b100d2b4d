package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Gunvolt24/order_service/internal/ports"
	"github.com/Gunvolt24/order_service/pkg/metrics"
)

var _ ports.Cache = (*Cache)(nil)

// Cache - ports.Cache поверх Redis (SET key value EX ttl / GET / DEL).
type Cache struct {
	client goredis.UniversalClient
}

// Options - параметры подключения.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New - создаёт клиент и проверяет соединение PING'ом.
func New(ctx context.Context, opts Options) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Cache{client: client}, nil
}

// NewFromClient - обёртка над готовым клиентом (тесты, общий пул).
func NewFromClient(client goredis.UniversalClient) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return "", false, nil
	case err != nil:
		metrics.CacheOps.WithLabelValues("error").Inc()
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	metrics.CacheOps.WithLabelValues("hit").Inc()
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.CacheOps.WithLabelValues("error").Inc()
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	metrics.CacheOps.WithLabelValues("set").Inc()
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		metrics.CacheOps.WithLabelValues("error").Inc()
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	metrics.CacheOps.WithLabelValues("delete").Inc()
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
