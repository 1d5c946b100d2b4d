package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/order_service/config"
	"github.com/Gunvolt24/order_service/internal/kafka"
	"github.com/Gunvolt24/order_service/internal/ports"
	rest "github.com/Gunvolt24/order_service/internal/transport/http"
	"github.com/Gunvolt24/order_service/internal/usecase"
	"github.com/Gunvolt24/order_service/pkg/httpx"
	"github.com/Gunvolt24/order_service/pkg/security"
	"github.com/Gunvolt24/order_service/pkg/validate"
	"github.com/gin-gonic/gin"
)

// App - собранное приложение и его внешние интерфейсы (HTTP, consumer).
// У API-сервера KafkaConsumer == nil, у воркера HTTPServer отдаёт только /metrics.
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	KafkaConsumer   ports.MessageConsumer // консьюмер сообщений
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup - функция освобождения ресурсов.
type Cleanup func()

// applyGinMode - устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap - собирает API-сервер: HTTP + cache-aside репозиторий + публикация new_order.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	c, err := newCore(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	logg := c.log

	// Прогрев кэша
	if err := c.repo.WarmUp(ctx, cfg.Cache.WarmUpN); err != nil {
		logg.Warnf(ctx, "warm-up cache failed: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka, logg)
	c.onClose(func() {
		if err := producer.Close(); err != nil {
			logg.Warnf(ctx, "kafka producer close error: %v", err)
		}
	})

	// Сборка зависимостей доменного слоя.
	orderService := usecase.NewOrderService(c.repo, producer, validate.NewOrderValidator(), logg)
	authService := usecase.NewAuthService(
		c.users,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		logg,
	)

	limits, err := newLimits(cfg.RateLimit)
	if err != nil {
		c.close()
		return nil, func() {}, err
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(orderService, authService, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, limits, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}
	return app, c.close, nil
}

// newLimits - глобальный лимит и два отдельных (в минуту и в час) на /register и /login.
func newLimits(cfg config.RateLimit) (rest.Limits, error) {
	global, err := httpx.NewRateLimiter("global", cfg.PerMinute, time.Minute, cfg.MaxClients)
	if err != nil {
		return rest.Limits{}, err
	}
	auth, err := httpx.NewRateLimiter("auth", cfg.AuthPerMinute, time.Minute, cfg.MaxClients)
	if err != nil {
		return rest.Limits{}, err
	}
	authHourly, err := httpx.NewRateLimiter("auth_hourly", cfg.AuthPerHour, time.Hour, cfg.MaxClients)
	if err != nil {
		return rest.Limits{}, err
	}
	return rest.Limits{Global: global, Auth: auth, AuthHourly: authHourly}, nil
}

// Run - запускает HTTP-сервер и консьюмера (если есть); ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
			runErr = err
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}
