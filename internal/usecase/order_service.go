package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
)

var _ ports.OrderService = (*OrderService)(nil)

// OrderService - прикладная логика работы с заказами (без знаний о транспорте).
// Отвечает за валидацию и проверку владельца; к хранилищу и кэшу ходит только через репозиторий.
type OrderService struct {
	repo      ports.OrderRepository
	publisher ports.EventPublisher
	validator ports.OrderValidator
	log       ports.Logger
}

// NewOrderService - DI-конструктор.
func NewOrderService(
	repo ports.OrderRepository,
	publisher ports.EventPublisher,
	validator ports.OrderValidator,
	log ports.Logger,
) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		log:       log,
	}
}

// CreateOrder - валидация, сохранение и ровно одна попытка опубликовать new_order.
// Ошибка публикации не откатывает заказ и не возвращается клиенту.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, input *domain.OrderInput) (*domain.Order, error) {
	if err := s.validator.Validate(ctx, input); err != nil {
		s.log.Warnf(ctx, "validation failed user=%d err=%v", userID, err)
		return nil, err
	}

	order, err := s.repo.Create(ctx, userID, input)
	if err != nil {
		s.log.Errorf(ctx, "repo.Create failed user=%d err=%v", userID, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.publisher.PublishNewOrder(context.WithoutCancel(ctx), order.ID); err != nil {
		s.log.Errorf(ctx, "publish new_order failed order=%s err=%v", order.ID, err)
	}

	s.log.Infof(ctx, "order created id=%s user=%d", order.ID, userID)
	return order, nil
}

// GetOrderForUser - сначала существование (ErrNotFound), потом владелец (ErrForbidden).
func (s *OrderService) GetOrderForUser(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Errorf(ctx, "repo.Get failed order=%s err=%v", orderID, err)
		}
		return nil, err
	}
	if order.UserID != userID {
		s.log.Warnf(ctx, "access denied order=%s user=%d", orderID, userID)
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// UpdateStatusForUser - проверка владельца, затем запись статуса.
// user_id заказа не меняется, поэтому гонка между проверкой и записью безвредна.
func (s *OrderService) UpdateStatusForUser(
	ctx context.Context,
	userID int64,
	orderID uuid.UUID,
	status domain.OrderStatus,
) (*domain.Order, error) {
	if _, err := s.GetOrderForUser(ctx, userID, orderID); err != nil {
		return nil, err
	}

	order, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Errorf(ctx, "repo.UpdateStatus failed order=%s err=%v", orderID, err)
		}
		return nil, err
	}

	s.log.Infof(ctx, "order status updated id=%s status=%s", orderID, status)
	return order, nil
}

// ListOrdersForUser - без фильтрации: вызывающая сторона обязана передать id
// аутентифицированного пользователя.
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	list, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "repo.ListForUser failed user=%d err=%v", userID, err)
		return nil, err
	}
	return list, nil
}
