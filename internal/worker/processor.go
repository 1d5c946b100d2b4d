// Package worker - обработка событий new_order.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
)

// OrderProcessor - обработчик сообщений топика new_order.
// Заказ читается через cache-aside репозиторий, как и в HTTP-сервисе.
type OrderProcessor struct {
	orders ports.OrderRepository
	delay  time.Duration
	log    ports.Logger
}

func NewOrderProcessor(orders ports.OrderRepository, delay time.Duration, log ports.Logger) *OrderProcessor {
	return &OrderProcessor{orders: orders, delay: delay, log: log}
}

// Handle - строгий разбор события, загрузка заказа и имитация обработки.
// Нечитаемое событие - domain.ErrInvalidEvent, удалённый заказ - domain.ErrNotFound.
func (p *OrderProcessor) Handle(ctx context.Context, raw []byte) error {
	ev, err := decodeEvent(raw)
	if err != nil {
		p.log.Warnf(ctx, "invalid new_order event: %v", err)
		return err
	}

	order, err := p.orders.Get(ctx, ev.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		p.log.Warnf(ctx, "order %s not found, event skipped", ev.OrderID)
		return err
	}
	if err != nil {
		return fmt.Errorf("load order %s: %w", ev.OrderID, err)
	}

	if err := sleepCtx(ctx, p.delay); err != nil {
		return err
	}

	p.log.Infof(ctx, "order %s processed", order.ID)
	return nil
}

// decodeEvent - неизвестные поля, лишние данные после объекта и пустой id запрещены.
func decodeEvent(raw []byte) (domain.NewOrderEvent, error) {
	var ev domain.NewOrderEvent

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return ev, fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return ev, fmt.Errorf("%w: trailing data", domain.ErrInvalidEvent)
	}
	if ev.OrderID == uuid.Nil {
		return ev, fmt.Errorf("%w: order_id is required", domain.ErrInvalidEvent)
	}
	return ev, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
