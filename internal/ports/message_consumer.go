package ports

import "context"

// MessageConsumer - фоновый потребитель событий (воркер new_order).
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
