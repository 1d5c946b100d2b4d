package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports/mocks"
	"github.com/Gunvolt24/order_service/internal/usecase"
	"github.com/Gunvolt24/order_service/pkg/validate"
)

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...any) {}
func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type orderDeps struct {
	repo      *mocks.MockOrderRepository
	publisher *mocks.MockEventPublisher
	validator *mocks.MockOrderValidator
	svc       *usecase.OrderService
}

func newOrderDeps(t *testing.T) orderDeps {
	ctrl := gomock.NewController(t)
	d := orderDeps{
		repo:      mocks.NewMockOrderRepository(ctrl),
		publisher: mocks.NewMockEventPublisher(ctrl),
		validator: mocks.NewMockOrderValidator(ctrl),
	}
	d.svc = usecase.NewOrderService(d.repo, d.publisher, d.validator, noopLogger{})
	return d
}

func ownedOrder(userID int64) *domain.Order {
	return &domain.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Items:      domain.Items(`{"sku":"x"}`),
		TotalPrice: 12.5,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestCreateOrder_PublishesExactlyOnce(t *testing.T) {
	d := newOrderDeps(t)

	in := &domain.OrderInput{Items: domain.Items(`{"sku":"x"}`), TotalPrice: 12.5}
	o := ownedOrder(7)
	gomock.InOrder(
		d.validator.EXPECT().Validate(gomock.Any(), in).Return(nil),
		d.repo.EXPECT().Create(gomock.Any(), int64(7), in).Return(o, nil),
		d.publisher.EXPECT().PublishNewOrder(gomock.Any(), o.ID).Return(nil).Times(1),
	)

	got, err := d.svc.CreateOrder(context.Background(), 7, in)
	if err != nil || got != o {
		t.Fatalf("CreateOrder: got %+v err=%v", got, err)
	}
}

func TestCreateOrder_PublishFailureIgnored(t *testing.T) {
	d := newOrderDeps(t)

	in := &domain.OrderInput{Items: domain.Items(`{}`), TotalPrice: 1}
	o := ownedOrder(7)
	d.validator.EXPECT().Validate(gomock.Any(), in).Return(nil)
	d.repo.EXPECT().Create(gomock.Any(), int64(7), in).Return(o, nil)
	d.publisher.EXPECT().PublishNewOrder(gomock.Any(), o.ID).Return(errors.New("broker down"))

	got, err := d.svc.CreateOrder(context.Background(), 7, in)
	if err != nil || got.ID != o.ID {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
}

func TestCreateOrder_ValidationFailed(t *testing.T) {
	d := newOrderDeps(t)

	in := &domain.OrderInput{TotalPrice: 0}
	d.validator.EXPECT().Validate(gomock.Any(), in).Return(validate.ErrInvalidOrder)
	d.repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	d.publisher.EXPECT().PublishNewOrder(gomock.Any(), gomock.Any()).Times(0)

	if _, err := d.svc.CreateOrder(context.Background(), 7, in); !errors.Is(err, validate.ErrInvalidOrder) {
		t.Fatalf("want ErrInvalidOrder, got %v", err)
	}
}

func TestCreateOrder_RepoErrorNoPublish(t *testing.T) {
	d := newOrderDeps(t)

	in := &domain.OrderInput{Items: domain.Items(`{}`), TotalPrice: 1}
	dbErr := errors.New("db down")
	d.validator.EXPECT().Validate(gomock.Any(), in).Return(nil)
	d.repo.EXPECT().Create(gomock.Any(), int64(7), in).Return(nil, dbErr)
	d.publisher.EXPECT().PublishNewOrder(gomock.Any(), gomock.Any()).Times(0)

	if _, err := d.svc.CreateOrder(context.Background(), 7, in); !errors.Is(err, dbErr) {
		t.Fatalf("want wrapped db error, got %v", err)
	}
}

func TestGetOrderForUser_Ownership(t *testing.T) {
	d := newOrderDeps(t)

	o := ownedOrder(1)
	d.repo.EXPECT().Get(gomock.Any(), o.ID).Return(o, nil).Times(2)

	if got, err := d.svc.GetOrderForUser(context.Background(), 1, o.ID); err != nil || got != o {
		t.Fatalf("owner must see the order: %v", err)
	}
	if _, err := d.svc.GetOrderForUser(context.Background(), 2, o.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestGetOrderForUser_NotFoundBeforeForbidden(t *testing.T) {
	d := newOrderDeps(t)

	id := uuid.New()
	d.repo.EXPECT().Get(gomock.Any(), id).Return(nil, domain.ErrNotFound)

	if _, err := d.svc.GetOrderForUser(context.Background(), 2, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusForUser_Owner(t *testing.T) {
	d := newOrderDeps(t)

	o := ownedOrder(1)
	paid := *o
	paid.Status = domain.StatusPaid
	gomock.InOrder(
		d.repo.EXPECT().Get(gomock.Any(), o.ID).Return(o, nil),
		d.repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, domain.StatusPaid).Return(&paid, nil),
	)

	got, err := d.svc.UpdateStatusForUser(context.Background(), 1, o.ID, domain.StatusPaid)
	if err != nil || got.Status != domain.StatusPaid {
		t.Fatalf("UpdateStatusForUser: %+v %v", got, err)
	}
}

func TestUpdateStatusForUser_ForeignOrderUntouched(t *testing.T) {
	d := newOrderDeps(t)

	o := ownedOrder(1)
	d.repo.EXPECT().Get(gomock.Any(), o.ID).Return(o, nil)
	d.repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	if _, err := d.svc.UpdateStatusForUser(context.Background(), 2, o.ID, domain.StatusCanceled); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestUpdateStatusForUser_NotFound(t *testing.T) {
	d := newOrderDeps(t)

	id := uuid.New()
	d.repo.EXPECT().Get(gomock.Any(), id).Return(nil, domain.ErrNotFound)
	d.repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	if _, err := d.svc.UpdateStatusForUser(context.Background(), 1, id, domain.StatusPaid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListOrdersForUser(t *testing.T) {
	d := newOrderDeps(t)

	list := []*domain.Order{ownedOrder(3), ownedOrder(3)}
	d.repo.EXPECT().ListForUser(gomock.Any(), int64(3)).Return(list, nil)

	got, err := d.svc.ListOrdersForUser(context.Background(), 3)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListOrdersForUser: %v %v", got, err)
	}
}
