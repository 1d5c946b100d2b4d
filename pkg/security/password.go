package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
)

// MaxPasswordBytes - bcrypt учитывает только первые 72 байта пароля.
const MaxPasswordBytes = 72

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher - хеширование паролей bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher - cost вне [bcrypt.MinCost, bcrypt.MaxCost] заменяется на bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash - пароль длиннее MaxPasswordBytes байт отклоняется с domain.ErrPasswordTooLong.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", domain.ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify - false и при несовпадении, и при битом хеше.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
