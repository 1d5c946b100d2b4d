package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/order_service/internal/ports"
	"github.com/Gunvolt24/order_service/pkg/metrics"
)

var _ ports.Cache = (*LRUCacheTTL)(nil)

type entry struct {
	key       string
	value     string
	expiresAt time.Time // нулевое значение - без срока
}

// LRUCacheTTL - потокобезопасный LRU-кэш строк с TTL на каждую запись.
// При переполнении вытесняется наименее используемый элемент.
type LRUCacheTTL struct {
	capacity int
	now      func() time.Time

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

func NewLRUCacheTTL(capacity int) *LRUCacheTTL {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCacheTTL{
		capacity: capacity,
		now:      time.Now,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *LRUCacheTTL) Get(_ context.Context, key string) (string, bool, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return "", false, nil
	}
	ent := elem.Value.(*entry)
	if ent.expired(now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		return "", false, nil
	}
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return ent.value, true, nil
}

func (c *LRUCacheTTL) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := c.now()
	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	metrics.CacheOps.WithLabelValues("set").Inc()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = expiresAt
		c.ll.MoveToFront(elem)
		return nil
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	c.index[key] = elem
	metrics.CacheSize.Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	return nil
}

func (c *LRUCacheTTL) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics.CacheOps.WithLabelValues("delete").Inc()
	if elem, ok := c.index[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Len - число записей, включая ещё не вычищенные просроченные.
func (c *LRUCacheTTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// ------вспомогательные функции------

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// evictLRU - удаляет наименее используемый элемент.
func (c *LRUCacheTTL) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
	}
}

func (c *LRUCacheTTL) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.index, ent.key)
	c.ll.Remove(elem)
	metrics.CacheSize.Set(float64(len(c.index)))
}

// pruneExpiredFromBack - удаляет просроченные элементы с хвоста до первого актуального.
func (c *LRUCacheTTL) pruneExpiredFromBack(now time.Time) {
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		if !back.Value.(*entry).expired(now) {
			return
		}
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("expired").Inc()
	}
}
