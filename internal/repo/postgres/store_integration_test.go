//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/order_service/internal/domain"
	pgrepo "github.com/Gunvolt24/order_service/internal/repo/postgres"
	"github.com/Gunvolt24/order_service/internal/testutil"
)

// startPG - контейнер с миграциями; длинный контекст только на подъём.
func startPG(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })
	return pg.Pool
}

// 1) Вставка и чтение заказа: items байт в байт, время в UTC
func TestOrderStore_InsertAndGet_TC(t *testing.T) {
	t.Parallel()
	pool := startPG(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := testutil.InsertUser(ctx, pool)
	require.NoError(t, err)

	store := pgrepo.NewOrderStore(pool)
	ord := testutil.MakeOrder(userID, testutil.WithItems(`{"z":1,"a":{"y":2,"b":3}}`))
	require.NoError(t, store.Insert(ctx, &ord))

	got, err := store.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, ord.ID, got.ID)
	require.Equal(t, userID, got.UserID)
	require.Equal(t, `{"z":1,"a":{"y":2,"b":3}}`, string(got.Items))
	require.Equal(t, domain.StatusPending, got.Status)
	require.InDelta(t, 12.5, got.TotalPrice, 1e-9)
	require.True(t, ord.CreatedAt.Equal(got.CreatedAt))
	require.Equal(t, time.UTC, got.CreatedAt.Location())

	// отсутствующий заказ - (nil, nil)
	missing, err := store.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)
}

// 2) UpdateStatus: read-modify-write, отсутствие - (nil, nil), CHECK на статус
func TestOrderStore_UpdateStatus_TC(t *testing.T) {
	t.Parallel()
	pool := startPG(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := testutil.InsertUser(ctx, pool)
	require.NoError(t, err)

	store := pgrepo.NewOrderStore(pool)
	ord := testutil.MakeOrder(userID)
	require.NoError(t, store.Insert(ctx, &ord))

	updated, err := store.UpdateStatus(ctx, ord.ID, domain.StatusPaid)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, domain.StatusPaid, updated.Status)
	require.Equal(t, string(ord.Items), string(updated.Items))

	got, err := store.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, got.Status)

	// переходы не ограничены
	back, err := store.UpdateStatus(ctx, ord.ID, domain.StatusPending)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, back.Status)

	missing, err := store.UpdateStatus(ctx, uuid.New(), domain.StatusPaid)
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = store.UpdateStatus(ctx, ord.ID, domain.OrderStatus("LOST"))
	require.Error(t, err)
}

// 3) Параллельные UpdateStatus сериализуются блокировкой строки
func TestOrderStore_UpdateStatus_Concurrent_TC(t *testing.T) {
	t.Parallel()
	pool := startPG(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := testutil.InsertUser(ctx, pool)
	require.NoError(t, err)

	store := pgrepo.NewOrderStore(pool)
	ord := testutil.MakeOrder(userID)
	require.NoError(t, store.Insert(ctx, &ord))

	statuses := []domain.OrderStatus{domain.StatusPaid, domain.StatusShipped, domain.StatusCanceled}
	var wg sync.WaitGroup
	for _, st := range statuses {
		wg.Add(1)
		go func(st domain.OrderStatus) {
			defer wg.Done()
			_, err := store.UpdateStatus(ctx, ord.ID, st)
			require.NoError(t, err)
		}(st)
	}
	wg.Wait()

	got, err := store.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Contains(t, statuses, got.Status)
}

// 4) ListByUser - только заказы пользователя, новые первыми; LastN - по всем
func TestOrderStore_ListByUserAndLastN_TC(t *testing.T) {
	t.Parallel()
	pool := startPG(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := testutil.InsertUser(ctx, pool)
	require.NoError(t, err)
	otherID, err := testutil.InsertUser(ctx, pool)
	require.NoError(t, err)

	store := pgrepo.NewOrderStore(pool)
	base := time.Now().UTC().Add(-time.Hour)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		o := testutil.MakeOrder(userID, testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, store.Insert(ctx, &o))
		ids = append(ids, o.ID)
	}
	other := testutil.MakeOrder(otherID, testutil.WithCreatedAt(base.Add(10*time.Minute)))
	require.NoError(t, store.Insert(ctx, &other))

	list, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, ids[2], list[0].ID)
	require.Equal(t, ids[1], list[1].ID)
	require.Equal(t, ids[0], list[2].ID)

	empty, err := store.ListByUser(ctx, 999999)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	last, err := store.LastN(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	require.Equal(t, other.ID, last[0].ID)
	require.Equal(t, ids[2], last[1].ID)

	none, err := store.LastN(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

// 5) UserStore: создание, поиск, дубликат email, регистр email важен
func TestUserStore_TC(t *testing.T) {
	t.Parallel()
	pool := startPG(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := pgrepo.NewUserStore(pool)

	u, err := store.Create(ctx, "a@x.io", "hash")
	require.NoError(t, err)
	require.Positive(t, u.ID)
	require.Equal(t, "a@x.io", u.Email)

	_, err = store.Create(ctx, "a@x.io", "hash2")
	require.ErrorIs(t, err, domain.ErrEmailExists)

	upper, err := store.Create(ctx, "A@x.io", "hash3")
	require.NoError(t, err)
	require.NotEqual(t, u.ID, upper.ID)

	byEmail, err := store.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.io", byID.Email)

	missing, err := store.GetByEmail(ctx, "nobody@x.io")
	require.NoError(t, err)
	require.Nil(t, missing)

	missingID, err := store.GetByID(ctx, 424242)
	require.NoError(t, err)
	require.Nil(t, missingID)
}
