package ports

import (
	"context"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/google/uuid"
)

// OrderStore - постоянное хранилище заказов (источник истины).
// Методы поиска возвращают (nil, nil), если записи нет.
type OrderStore interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// UpdateStatus - чтение текущей строки и запись нового статуса в одной транзакции.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	LastN(ctx context.Context, n int) ([]*domain.Order, error)
}
