package app

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/Gunvolt24/order_service/config"
	cachemem "github.com/Gunvolt24/order_service/internal/cache/memory"
)

type nopLog struct{}

func (nopLog) Debugf(context.Context, string, ...any) {}
func (nopLog) Infof(context.Context, string, ...any)  {}
func (nopLog) Warnf(context.Context, string, ...any)  {}
func (nopLog) Errorf(context.Context, string, ...any) {}

func TestCore_CloseInReverseOrder(t *testing.T) {
	c := &core{}
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		c.onClose(func() { order = append(order, i) })
	}

	c.close()
	c.close() // повторный вызов ничего не делает

	if !reflect.DeepEqual(order, []int{3, 2, 1}) {
		t.Fatalf("close order: got=%v want=[3 2 1]", order)
	}
}

func TestNewCache_Backends(t *testing.T) {
	ctx := context.Background()

	mem := newCache(ctx, config.Cache{Backend: config.CacheBackendMemory, Capacity: 10}, nopLog{}, &core{})
	if _, ok := mem.(*cachemem.LRUCacheTTL); !ok {
		t.Fatalf("memory backend: got %T", mem)
	}

	if none := newCache(ctx, config.Cache{Backend: config.CacheBackendNone}, nopLog{}, &core{}); none != nil {
		t.Fatalf("none backend must be nil, got %T", none)
	}
}

func TestNewCache_RedisUnavailableFallsBackToNone(t *testing.T) {
	c := &core{}
	cache := newCache(context.Background(), config.Cache{
		Backend:   config.CacheBackendRedis,
		RedisAddr: "127.0.0.1:1",
	}, nopLog{}, c)

	if cache != nil {
		t.Fatalf("unreachable redis must disable cache, got %T", cache)
	}
	if len(c.closers) != 0 {
		t.Fatalf("no closer must be registered for failed redis")
	}
}

func TestNewLimits(t *testing.T) {
	limits, err := newLimits(config.RateLimit{PerMinute: 2, AuthPerMinute: 1, AuthPerHour: 3, MaxClients: 10})
	if err != nil {
		t.Fatalf("newLimits: %v", err)
	}

	if ok, _ := limits.Auth.Allow("ip"); !ok {
		t.Fatal("first auth request must pass")
	}
	if ok, _ := limits.Auth.Allow("ip"); ok {
		t.Fatal("auth limit is 1 per minute")
	}
	for i := 0; i < 2; i++ {
		if ok, _ := limits.Global.Allow("ip"); !ok {
			t.Fatalf("global request %d must pass", i+1)
		}
	}
	if ok, _ := limits.Global.Allow("ip"); ok {
		t.Fatal("global limit is 2 per minute")
	}
	for i := 0; i < 3; i++ {
		if ok, _ := limits.AuthHourly.Allow("ip"); !ok {
			t.Fatalf("hourly auth request %d must pass", i+1)
		}
	}
	ok, retry := limits.AuthHourly.Allow("ip")
	if ok {
		t.Fatal("hourly auth limit is 3")
	}
	if retry <= time.Minute {
		t.Fatalf("hourly window must reset in about an hour, got %v", retry)
	}
}
