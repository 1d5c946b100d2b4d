package ports

import "context"

// Logger - минимальный контракт логгера для внешних слоёв.
// Реализация сама достаёт из ctx request_id/user_id/trace_id.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...any) // Debugf - подробности (cache hit/miss и т.п.).
	Infof(ctx context.Context, format string, args ...any)  // Infof - информационные сообщения.
	Warnf(ctx context.Context, format string, args ...any)  // Warnf - предупреждения.
	Errorf(ctx context.Context, format string, args ...any) // Errorf - ошибки.
}
