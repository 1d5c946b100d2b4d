package ports

// PasswordHasher - хэширование и проверка паролей.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenProvider - выпуск и разбор подписанных токенов доступа.
type TokenProvider interface {
	Issue(subject string) (string, error)
	// Decode - вернёт domain.ErrUnauthenticated для невалидного/просроченного токена.
	Decode(token string) (string, error)
}
