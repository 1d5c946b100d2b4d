package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
)

var _ ports.OrderStore = (*OrderStore)(nil)

const orderColumns = `id, user_id, items, total_price, status, created_at`

// OrderStore - заказы в Postgres (pgxpool).
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore { return &OrderStore{pool: pool} }

// Insert - вставка нового заказа; коммит этой вставки и есть момент сохранения.
func (s *OrderStore) Insert(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == uuid.Nil {
		return errors.New("order is empty or id is required")
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.UserID, itemsParam(order.Items), order.TotalPrice, string(order.Status), order.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID - заказ по id. Если не нашли, возвращает (nil, nil).
func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	return order, nil
}

// UpdateStatus - read-modify-write в одной транзакции: строка блокируется (FOR UPDATE),
// статус меняется, коммит. Если заказа нет, возвращает (nil, nil).
func (s *OrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed - игнорируем.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	order, err := scanOrder(tx.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order for update: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status)); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	order.Status = status
	return order, nil
}

// ListByUser - все заказы пользователя, новые первыми.
func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select user orders: %w", err)
	}
	return collectOrders(rows)
}

// LastN - последние N заказов (для прогрева кэша).
func (s *OrderStore) LastN(ctx context.Context, n int) ([]*domain.Order, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("select last orders: %w", err)
	}
	return collectOrders(rows)
}

// ------вспомогательные функции------

// itemsParam - items передаются в json-колонку как есть; []byte pgx кодирует без перестановки ключей.
func itemsParam(items domain.Items) []byte {
	if len(items) == 0 {
		return []byte("{}")
	}
	return []byte(items)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order  domain.Order
		items  []byte
		status string
	)
	if err := row.Scan(&order.ID, &order.UserID, &items, &order.TotalPrice, &status, &order.CreatedAt); err != nil {
		return nil, err
	}
	order.Items = domain.Items(items)
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()
	return &order, nil
}

func collectOrders(rows pgx.Rows) ([]*domain.Order, error) {
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	return orders, nil
}
