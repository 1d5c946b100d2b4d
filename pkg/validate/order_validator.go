package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder - базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// MaxItemsBytes - предельный размер items по умолчанию.
const MaxItemsBytes = 64 << 10

// OrderValidator - проверка входных данных заказа. Содержимое items не разбирается,
// проверяется только то, что это JSON-объект разумного размера.
type OrderValidator struct {
	maxItemsBytes int
}

// NewOrderValidator - конструктор OrderValidator.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
func NewOrderValidator() *OrderValidator { return &OrderValidator{maxItemsBytes: MaxItemsBytes} }

// Validate - проверяет поля заказа.
func (v *OrderValidator) Validate(_ context.Context, input *domain.OrderInput) error {
	if input == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if err := v.validatePrice(input.TotalPrice); err != nil {
		return err
	}
	return v.validateItems(input.Items)
}

func (v *OrderValidator) validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: total_price должен быть конечным числом", ErrInvalidOrder)
	}
	if price <= 0 {
		return fmt.Errorf("%w: total_price должен быть больше нуля", ErrInvalidOrder)
	}
	return nil
}

// validateItems - items обязателен и должен быть JSON-объектом.
func (v *OrderValidator) validateItems(items domain.Items) error {
	trimmed := bytes.TrimSpace(items)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: items обязателен", ErrInvalidOrder)
	}
	if v.maxItemsBytes > 0 && len(trimmed) > v.maxItemsBytes {
		return fmt.Errorf("%w: items больше %d байт", ErrInvalidOrder, v.maxItemsBytes)
	}
	if trimmed[0] != '{' || !utf8.Valid(trimmed) || !json.Valid(trimmed) {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, domain.ErrItemsNotObject)
	}
	return nil
}
