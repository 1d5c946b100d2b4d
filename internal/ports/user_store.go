package ports

import (
	"context"

	"github.com/Gunvolt24/order_service/internal/domain"
)

// UserStore - хранилище пользователей. Поиск возвращает (nil, nil), если записи нет.
type UserStore interface {
	// Create - вернёт domain.ErrEmailExists при нарушении уникальности email.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
