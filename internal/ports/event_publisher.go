package ports

import (
	"context"

	"github.com/google/uuid"
)

// EventPublisher - отправка события new_order воркерам (fire-and-forget).
type EventPublisher interface {
	PublishNewOrder(ctx context.Context, orderID uuid.UUID) error
}
