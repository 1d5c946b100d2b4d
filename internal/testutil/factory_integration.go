//go:build integration

package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/order_service/internal/domain"
)

var userSeq atomic.Int64

// UniqueEmail - уникальный email в рамках прогона.
func UniqueEmail() string {
	return fmt.Sprintf("user-%d-%d@example.com", time.Now().UnixNano(), userSeq.Add(1))
}

// InsertUser - пользователь напрямую через SQL (для тестов заказов).
func InsertUser(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id`,
		UniqueEmail(),
	).Scan(&id)
	return id, err
}

type OrderOption func(*domain.Order)

func WithItems(raw string) OrderOption {
	return func(o *domain.Order) { o.Items = domain.Items(raw) }
}

func WithCreatedAt(t time.Time) OrderOption {
	return func(o *domain.Order) { o.CreatedAt = t.UTC().Truncate(time.Microsecond) }
}

func WithStatus(s domain.OrderStatus) OrderOption {
	return func(o *domain.Order) { o.Status = s }
}

// MakeOrder - валидный заказ пользователя userID с новым id.
func MakeOrder(userID int64, opts ...OrderOption) domain.Order {
	o := domain.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Items:      domain.Items(`{"sku":"x","qty":1}`),
		TotalPrice: 12.5,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
