package rest

import (
	"net/http"

	"github.com/Gunvolt24/order_service/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Limits - лимитеры запросов; nil - без ограничения.
type Limits struct {
	Global     *httpx.RateLimiter // на все API-маршруты
	Auth       *httpx.RateLimiter // дополнительно на /register и /login
	AuthHourly *httpx.RateLimiter // часовой лимит на те же маршруты
}

// NewRouter - gin-роутер со всеми маршрутами. otelServiceName == "" - без otelgin.
func NewRouter(h *Handler, limits Limits, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.HTTPMetrics())
	r.Use(httpx.RequestLogger(h.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	// служебные маршруты без лимитов
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	if limits.Global != nil {
		api.Use(limits.Global.Middleware())
	}

	auth := api.Group("/")
	if limits.Auth != nil {
		auth.Use(limits.Auth.Middleware())
	}
	if limits.AuthHourly != nil {
		auth.Use(limits.AuthHourly.Middleware())
	}
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)

	orders := api.Group("/orders", h.requireAuth())
	orders.POST("", h.createOrder)
	orders.GET("/:id", h.getOrder)
	orders.PATCH("/:id", h.updateOrderStatus)
	orders.GET("/user/:id", h.listUserOrders)

	return r
}
