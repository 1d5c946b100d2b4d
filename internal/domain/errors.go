package domain

import "errors"

var (
	// Ошибки поиска/доступа.

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Ошибки аутентификации.

	ErrEmailExists     = errors.New("email already registered")
	ErrBadCredentials  = errors.New("incorrect email or password")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrPasswordTooLong = errors.New("password is too long")

	// Ошибки входных данных.

	ErrInvalidStatus  = errors.New("invalid order status")
	ErrItemsNotObject = errors.New("items must be a json object")

	// ErrInvalidEvent - сообщение брокера не разбирается; повторная обработка бессмысленна.
	ErrInvalidEvent = errors.New("invalid event")
)
