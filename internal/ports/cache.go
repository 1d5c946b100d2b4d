package ports

import (
	"context"
	"time"
)

// Cache - key-value хранилище строк с TTL (memory/redis).
// Кэш вспомогательный: промах не ошибка, данные всегда восстанавливаются из БД.
// Реализация должна быть потокобезопасной.
type Cache interface {
	// Get - ("", false, nil) при промахе или истечении TTL.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set - записать/перезаписать значение; истекает через ttl (ttl <= 0 - без срока).
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete - удалить ключ; отсутствие ключа не ошибка.
	Delete(ctx context.Context, key string) error
}
