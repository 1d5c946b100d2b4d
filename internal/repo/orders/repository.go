// Package orders - cache-aside над хранилищем заказов.
//
// Хранилище - источник истины, кэш только ускоряет чтение по id.
// Чтение: кэш -> (промах) хранилище -> запись в кэш.
// Изменение: коммит в хранилище -> Delete ключа -> Set свежего значения.
// Между коммитом и обновлением кэша есть узкое окно, когда конкурентный Get
// может вернуть старое значение; оно закрывается последующим Set либо TTL.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
	"github.com/Gunvolt24/order_service/pkg/metrics"
	"github.com/Gunvolt24/order_service/pkg/telemetry"
)

var _ ports.OrderRepository = (*Repository)(nil)

// Repository - единственный владелец протокола Store <-> Cache.
type Repository struct {
	store ports.OrderStore
	cache ports.Cache // nil - работаем без кэша
	ttl   time.Duration
	log   ports.Logger
	now   func() time.Time
}

// NewRepository - DI-конструктор. cache может быть nil.
func NewRepository(store ports.OrderStore, cache ports.Cache, ttl time.Duration, log ports.Logger) *Repository {
	return &Repository{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// Create - вставка нового заказа в статусе PENDING. Коммит вставки - точка сохранения;
// ошибка кэша после него только логируется.
func (r *Repository) Create(ctx context.Context, userID int64, input *domain.OrderInput) (*domain.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "orders.Create")
	defer span.End()

	if input == nil {
		return nil, fmt.Errorf("create order: empty input")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Items:      append(domain.Items(nil), input.Items...),
		TotalPrice: input.TotalPrice,
		Status:     domain.StatusPending,
		// точность timestamptz - микросекунды; кэш и БД должны отдавать одно и то же
		CreatedAt: r.now().UTC().Truncate(time.Microsecond),
	}
	if len(order.Items) == 0 {
		order.Items = domain.Items("{}")
	}
	span.SetAttributes(attribute.String("order.id", order.ID.String()))

	if err := r.store.Insert(ctx, order); err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("insert order: %w", err)
	}

	r.setCached(context.WithoutCancel(ctx), order)
	return order, nil
}

// Get - заказ по id: попадание в кэш не трогает хранилище.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "orders.Get",
		trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	if order, ok := r.getCached(ctx, id); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		r.log.Debugf(ctx, "cache hit for order=%s", id)
		return order, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	start := r.now()
	order, err := r.store.GetByID(ctx, id)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	r.log.Debugf(ctx, "db fetch order=%s took=%s", id, time.Since(start))

	r.setCached(ctx, order)
	return order, nil
}

// UpdateStatus - чтение и запись строки в одной транзакции хранилища (не из кэша),
// затем Delete и Set ключа. Шаги кэша выполняются и при отменённом запросе.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "orders.UpdateStatus",
		trace.WithAttributes(
			attribute.String("order.id", id.String()),
			attribute.String("order.status", string(status)),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order, err := r.store.UpdateStatus(ctx, id, status)
	if err != nil {
		recordErr(span, err)
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	bg := context.WithoutCancel(ctx)
	r.invalidate(bg, id)
	r.setCached(bg, order)
	return order, nil
}

// ListForUser - только из хранилища, новые первыми; списки не кэшируются.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	list, err := r.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders user=%d: %w", userID, err)
	}
	return list, nil
}

// WarmUp - прогрев кэша последними n заказами. n <= 0 или отсутствие кэша - no-op.
func (r *Repository) WarmUp(ctx context.Context, n int) error {
	if n <= 0 || r.cache == nil {
		r.log.Infof(ctx, "cache warm-up skipped (n=%d, cache=%t)", n, r.cache != nil)
		return nil
	}

	start := r.now()
	list, err := r.store.LastN(ctx, n)
	if err != nil {
		r.log.Errorf(ctx, "store.LastN failed n=%d err=%v", n, err)
		return fmt.Errorf("warm up: %w", err)
	}
	for _, order := range list {
		r.setCached(ctx, order)
	}
	r.log.Infof(ctx, "cache warmed with %d orders in %s", len(list), time.Since(start))
	return nil
}

// ------вспомогательные функции------

// getCached - ошибка кэша и нечитаемое значение считаются промахом; битый ключ удаляется.
func (r *Repository) getCached(ctx context.Context, id uuid.UUID) (*domain.Order, bool) {
	if r.cache == nil {
		return nil, false
	}
	key := domain.OrderCacheKey(id)

	raw, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warnf(ctx, "cache.Get failed key=%s err=%v", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil || order.ID != id {
		metrics.CacheOps.WithLabelValues("corrupt").Inc()
		r.log.Warnf(ctx, "corrupt cache entry key=%s err=%v", key, err)
		r.invalidate(ctx, id)
		return nil, false
	}
	return &order, true
}

func (r *Repository) setCached(ctx context.Context, order *domain.Order) {
	if r.cache == nil {
		return
	}
	key := domain.OrderCacheKey(order.ID)

	raw, err := json.Marshal(order)
	if err != nil {
		r.log.Warnf(ctx, "marshal order for cache key=%s err=%v", key, err)
		return
	}
	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		r.log.Warnf(ctx, "cache.Set failed key=%s err=%v", key, err)
	}
}

func (r *Repository) invalidate(ctx context.Context, id uuid.UUID) {
	if r.cache == nil {
		return
	}
	key := domain.OrderCacheKey(id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warnf(ctx, "cache.Delete failed key=%s err=%v", key, err)
	}
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
