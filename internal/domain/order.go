package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// OrderStatus - статус заказа. Переходы между статусами не ограничиваются.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusPaid     OrderStatus = "PAID"
	StatusShipped  OrderStatus = "SHIPPED"
	StatusCanceled OrderStatus = "CANCELED"
)

// ParseOrderStatus - разбор статуса из строки (регистр важен, как в API).
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.TrimSpace(s)); st {
	case StatusPending, StatusPaid, StatusShipped, StatusCanceled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Items - содержимое заказа: произвольный JSON-объект.
// Хранится как есть, байт в байт, поэтому порядок ключей сохраняется.
type Items json.RawMessage

// MarshalJSON - отдаёт исходный JSON; пустое значение сериализуется как {}.
func (i Items) MarshalJSON() ([]byte, error) {
	if len(i) == 0 {
		return []byte("{}"), nil
	}
	return i, nil
}

// UnmarshalJSON - принимает только JSON-объект в валидном UTF-8. Пробелы убираются (json.Compact),
// чтобы значение из БД и из кэша совпадало байт в байт.
func (i *Items) UnmarshalJSON(data []byte) error {
	if i == nil {
		return errors.New("domain.Items: UnmarshalJSON on nil pointer")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !utf8.Valid(trimmed) {
		return ErrItemsNotObject
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return ErrItemsNotObject
	}
	*i = Items(buf.Bytes())
	return nil
}

// Order - read-модель заказа: то, что отдаётся наружу и кладётся в кэш.
type Order struct {
	ID         uuid.UUID   `json:"id"`
	UserID     int64       `json:"user_id"`
	Items      Items       `json:"items"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderInput - данные для создания заказа.
type OrderInput struct {
	Items      Items   `json:"items"`
	TotalPrice float64 `json:"total_price"`
}

// OrderCacheKey - ключ заказа в кэше.
func OrderCacheKey(id uuid.UUID) string {
	return "order:" + id.String()
}

// NewOrderEvent - событие о новом заказе для воркеров.
type NewOrderEvent struct {
	OrderID uuid.UUID `json:"order_id"`
}
