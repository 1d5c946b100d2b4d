package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/order_service/config"
	cachemem "github.com/Gunvolt24/order_service/internal/cache/memory"
	cacheredis "github.com/Gunvolt24/order_service/internal/cache/redis"
	"github.com/Gunvolt24/order_service/internal/ports"
	"github.com/Gunvolt24/order_service/internal/repo/orders"
	"github.com/Gunvolt24/order_service/internal/repo/postgres"
	"github.com/Gunvolt24/order_service/migrations"
	"github.com/Gunvolt24/order_service/pkg/logger"
	"github.com/Gunvolt24/order_service/pkg/metrics"
	"github.com/Gunvolt24/order_service/pkg/telemetry"
)

// core - общая часть API-сервера и воркера: логгер, метрики, трейсинг, БД, кэш, репозиторий.
type core struct {
	log     *logger.ZapLogger
	pool    *pgxpool.Pool
	repo    *orders.Repository
	users   *postgres.UserStore
	closers []func()
}

func newCore(ctx context.Context, cfg *config.Config) (*core, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, err
	}
	c := &core{log: logg}
	c.onClose(func() {
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	})

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию - no-op.
	if cfg.Tracing.Enabled {
		shutdownTrace, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			c.onClose(func() {
				if terr := shutdownTrace(context.Background()); terr != nil {
					logg.Warnf(ctx, "shutdown tracing: %v", terr)
				}
			})
		}
	}

	if cfg.Postgres.AutoMigrate {
		if err := migrations.UpDSN(ctx, cfg.Postgres.DSN); err != nil {
			c.close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		logg.Infof(ctx, "migrations applied")
	}

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		c.close()
		return nil, err
	}
	c.pool = pool
	c.onClose(pool.Close)

	cache := newCache(ctx, cfg.Cache, logg, c)
	c.repo = orders.NewRepository(postgres.NewOrderStore(pool), cache, cfg.Cache.TTL, logg)
	c.users = postgres.NewUserStore(pool)
	return c, nil
}

// newCache - бэкенд кэша по конфигурации. Кэш вспомогательный: если redis недоступен
// при старте, сервис работает без кэша.
func newCache(ctx context.Context, cfg config.Cache, log ports.Logger, c *core) ports.Cache {
	switch cfg.Backend {
	case config.CacheBackendMemory:
		log.Infof(ctx, "cache backend=memory capacity=%d ttl=%s", cfg.Capacity, cfg.TTL)
		return cachemem.NewLRUCacheTTL(cfg.Capacity)
	case config.CacheBackendRedis:
		rc, err := cacheredis.New(ctx, cacheredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warnf(ctx, "redis cache unavailable, running without cache: %v", err)
			return nil
		}
		c.onClose(func() {
			if err := rc.Close(); err != nil {
				log.Warnf(ctx, "redis close error: %v", err)
			}
		})
		log.Infof(ctx, "cache backend=redis addr=%s ttl=%s", cfg.RedisAddr, cfg.TTL)
		return rc
	default:
		log.Infof(ctx, "cache disabled")
		return nil
	}
}

// onClose - регистрирует освобождение ресурса; close выполняет их в обратном порядке.
func (c *core) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

func (c *core) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
