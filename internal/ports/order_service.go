package ports

import (
	"context"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/google/uuid"
)

// OrderService - сценарии работы с заказами для транспортного слоя.
type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, input *domain.OrderInput) (*domain.Order, error)
	GetOrderForUser(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error)
	UpdateStatusForUser(ctx context.Context, userID int64, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID int64) ([]*domain.Order, error)
}
