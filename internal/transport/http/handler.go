package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
	"github.com/Gunvolt24/order_service/pkg/ctxmeta"
	"github.com/Gunvolt24/order_service/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// Handler - HTTP-обработчики поверх сервисов заказов и аутентификации.
type Handler struct {
	orders  ports.OrderService
	auth    ports.AuthService
	log     ports.Logger
	timeout time.Duration
}

// NewHandler - timeout ограничивает обработку одного запроса (0 - без ограничения).
func NewHandler(orders ports.OrderService, auth ports.AuthService, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{orders: orders, auth: auth, log: log, timeout: timeout}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createOrderRequest struct {
	Items      domain.Items `json:"items" binding:"required"`
	TotalPrice float64      `json:"total_price" binding:"gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ordersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

// requestContext - контекст запроса с таймаутом обработчика.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.timeout)
	}
	return context.WithCancel(c.Request.Context())
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID, _ := ctxmeta.UserIDFromContext(ctx)
	order, err := h.orders.CreateOrder(ctx, userID, &domain.OrderInput{Items: req.Items, TotalPrice: req.TotalPrice})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := httpx.ParseUUIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID, _ := ctxmeta.UserIDFromContext(ctx)
	order, err := h.orders.GetOrderForUser(ctx, userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := httpx.ParseUUIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID, _ := ctxmeta.UserIDFromContext(ctx)
	order, err := h.orders.UpdateStatusForUser(ctx, userID, id, status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// listUserOrders - список доступен только самому пользователю.
func (h *Handler) listUserOrders(c *gin.Context) {
	ownerID, ok := httpx.ParseInt64Param(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID, _ := ctxmeta.UserIDFromContext(ctx)
	if ownerID != userID {
		h.writeError(c, domain.ErrForbidden)
		return
	}

	orders, err := h.orders.ListOrdersForUser(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}
