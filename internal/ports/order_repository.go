package ports

import (
	"context"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/google/uuid"
)

// OrderRepository - заказы с cache-aside поверх OrderStore и Cache.
// Отсутствующий заказ - domain.ErrNotFound.
type OrderRepository interface {
	Create(ctx context.Context, userID int64, input *domain.OrderInput) (*domain.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error)
}
