package ports

import (
	"context"

	"github.com/Gunvolt24/order_service/internal/domain"
)

// AuthService - регистрация и вход.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.UserPublic, error)
	Login(ctx context.Context, email, password string) (string, error)
	// Authenticate - id пользователя по токену доступа; иначе domain.ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (int64, error)
}
