//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/order_service/internal/cache/memory"
	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/repo/orders"
	pgrepo "github.com/Gunvolt24/order_service/internal/repo/postgres"
	"github.com/Gunvolt24/order_service/internal/testutil"
	rest "github.com/Gunvolt24/order_service/internal/transport/http"
	"github.com/Gunvolt24/order_service/internal/usecase"
	"github.com/Gunvolt24/order_service/pkg/logger"
	"github.com/Gunvolt24/order_service/pkg/security"
	"github.com/Gunvolt24/order_service/pkg/validate"
)

// recordingPublisher - запоминает опубликованные id заказов.
type recordingPublisher struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (p *recordingPublisher) PublishNewOrder(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	return nil
}

func (p *recordingPublisher) published() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.ids...)
}

type apiClient struct {
	t   *testing.T
	url string
}

func (a apiClient) call(method, path, token string, body any, out any) int {
	a.t.Helper()
	var rdr io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.url+path, rdr)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signUp - регистрация + логин, возвращает id пользователя и токен.
func (a apiClient) signUp(email string) (int64, string) {
	a.t.Helper()
	creds := map[string]string{"email": email, "password": "secret-pass"}

	var user domain.UserPublic
	require.Equal(a.t, http.StatusOK, a.call(http.MethodPost, "/register", "", creds, &user))

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.Equal(a.t, http.StatusOK, a.call(http.MethodPost, "/login", "", creds, &tok))
	require.Equal(a.t, "bearer", tok.TokenType)
	return user.ID, tok.AccessToken
}

// Полный сценарий: регистрация, логин, создание, чтение, смена статуса, список, чужой доступ
func TestHTTP_OrderLifecycle_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	pub := &recordingPublisher{}
	repo := orders.NewRepository(pgrepo.NewOrderStore(pg.Pool), cachemem.NewLRUCacheTTL(100), time.Minute, logg)
	orderSvc := usecase.NewOrderService(repo, pub, validate.NewOrderValidator(), logg)
	authSvc := usecase.NewAuthService(
		pgrepo.NewUserStore(pg.Pool),
		security.NewBcryptHasher(4),
		security.NewJWTProvider("integration-secret", time.Hour),
		logg,
	)

	h := rest.NewHandler(orderSvc, authSvc, logg, 5*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, rest.Limits{}, ""))
	defer ts.Close()
	api := apiClient{t: t, url: ts.URL}

	ownerEmail := testutil.UniqueEmail()
	ownerID, ownerToken := api.signUp(ownerEmail)
	strangerID, strangerToken := api.signUp(testutil.UniqueEmail())

	// повторная регистрация - 400, первый пользователь не затронут
	require.Equal(t, http.StatusBadRequest,
		api.call(http.MethodPost, "/register", "", map[string]string{"email": ownerEmail, "password": "other-pass"}, nil))

	// неверный пароль - 401
	require.Equal(t, http.StatusUnauthorized,
		api.call(http.MethodPost, "/login", "", map[string]string{"email": ownerEmail, "password": "wrong-pass"}, nil))

	// создание
	var created domain.Order
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/orders", ownerToken,
		map[string]any{"items": json.RawMessage(`{"sku":"x","qty":2}`), "total_price": 12.5}, &created))
	require.Equal(t, ownerID, created.UserID)
	require.Equal(t, domain.StatusPending, created.Status)
	require.JSONEq(t, `{"sku":"x","qty":2}`, string(created.Items))
	require.Equal(t, []uuid.UUID{created.ID}, pub.published())

	// чтение владельцем и чужим
	var got domain.Order
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/orders/"+created.ID.String(), ownerToken, nil, &got))
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, http.StatusForbidden, api.call(http.MethodGet, "/orders/"+created.ID.String(), strangerToken, nil, nil))
	require.Equal(t, http.StatusNotFound, api.call(http.MethodGet, "/orders/"+uuid.NewString(), ownerToken, nil, nil))

	// чужой не меняет статус
	require.Equal(t, http.StatusForbidden, api.call(http.MethodPatch, "/orders/"+created.ID.String(), strangerToken,
		map[string]string{"status": "CANCELED"}, nil))

	// владелец меняет статус, последующее чтение видит новое значение (кэш обновлён)
	var updated domain.Order
	require.Equal(t, http.StatusOK, api.call(http.MethodPatch, "/orders/"+created.ID.String(), ownerToken,
		map[string]string{"status": "PAID"}, &updated))
	require.Equal(t, domain.StatusPaid, updated.Status)

	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/orders/"+created.ID.String(), ownerToken, nil, &got))
	require.Equal(t, domain.StatusPaid, got.Status)

	// список: только свой
	var list struct {
		Orders []domain.Order `json:"orders"`
	}
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, fmt.Sprintf("/orders/user/%d", ownerID), ownerToken, nil, &list))
	require.Len(t, list.Orders, 1)
	require.Equal(t, created.ID, list.Orders[0].ID)

	require.Equal(t, http.StatusForbidden,
		api.call(http.MethodGet, fmt.Sprintf("/orders/user/%d", ownerID), strangerToken, nil, nil))

	require.Equal(t, http.StatusOK, api.call(http.MethodGet, fmt.Sprintf("/orders/user/%d", strangerID), strangerToken, nil, &list))
	require.Empty(t, list.Orders)

	// без токена
	require.Equal(t, http.StatusUnauthorized, api.call(http.MethodGet, "/orders/"+created.ID.String(), "", nil, nil))
}

// Таймаут обработчика: медленный сервис - 504
func TestHTTP_HandlerTimeout_504(t *testing.T) {
	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	h := rest.NewHandler(slowService{}, staticAuth{userID: 1}, logg, 10*time.Millisecond)
	ts := httptest.NewServer(rest.NewRouter(h, rest.Limits{}, ""))
	defer ts.Close()

	api := apiClient{t: t, url: ts.URL}
	require.Equal(t, http.StatusGatewayTimeout, api.call(http.MethodGet, "/orders/"+uuid.NewString(), "any", nil, nil))
}

// --- функции помощники ---

// staticAuth - любой токен принадлежит userID.
type staticAuth struct{ userID int64 }

func (s staticAuth) Register(context.Context, string, string) (*domain.UserPublic, error) {
	return nil, domain.ErrEmailExists
}
func (s staticAuth) Login(context.Context, string, string) (string, error) {
	return "", domain.ErrBadCredentials
}
func (s staticAuth) Authenticate(context.Context, string) (int64, error) { return s.userID, nil }

// slowService - всегда ждёт ctx.Done() и возвращает ошибку контекста.
type slowService struct{}

func (slowService) CreateOrder(ctx context.Context, _ int64, _ *domain.OrderInput) (*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowService) GetOrderForUser(ctx context.Context, _ int64, _ uuid.UUID) (*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowService) UpdateStatusForUser(ctx context.Context, _ int64, _ uuid.UUID, _ domain.OrderStatus) (*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowService) ListOrdersForUser(ctx context.Context, _ int64) ([]*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
