package ports

import (
	"context"

	"github.com/Gunvolt24/order_service/internal/domain"
)

type OrderValidator interface {
	Validate(ctx context.Context, input *domain.OrderInput) error
}
