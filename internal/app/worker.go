package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/order_service/config"
	"github.com/Gunvolt24/order_service/internal/kafka"
	"github.com/Gunvolt24/order_service/internal/worker"
)

// BootstrapWorker - собирает воркер new_order: Kafka-консьюмер + HTTP с /metrics и /healthz.
func BootstrapWorker(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	c, err := newCore(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	logg := c.log

	processor := worker.NewOrderProcessor(c.repo, cfg.Worker.ProcessDelay, logg)
	consumer := kafka.NewConsumer(kafka.NewConsumerConfig(cfg.Kafka), processor, logg)
	c.onClose(func() {
		if err := consumer.Close(); err != nil {
			logg.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	})

	applyGinMode(ctx, cfg.HTTP.GinMode, logg)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(gc *gin.Context) { gc.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app := &App{
		Logger: logg,
		HTTPServer: &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           r,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		},
		KafkaConsumer:   consumer,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}
	return app, c.close, nil
}
