package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService - регистрация и выдача токенов.
type AuthService struct {
	users  ports.UserStore
	hasher ports.PasswordHasher
	tokens ports.TokenProvider
	log    ports.Logger
}

func NewAuthService(
	users ports.UserStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenProvider,
	log ports.Logger,
) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// Register - email сравнивается с учётом регистра. Хеш пароля наружу не отдаётся.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.UserPublic, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// уникальный индекс ловит гонку двух регистраций
	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Infof(ctx, "user registered id=%d", user.ID)
	pub := user.Public()
	return &pub, nil
}

// Login - ErrBadCredentials и для неизвестного email, и для неверного пароля.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Warnf(ctx, "login failed")
		return "", domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate - id пользователя из токена. Любая проблема - ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	sub, err := s.tokens.Decode(token)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrUnauthenticated
	}

	// токен мог пережить пользователя
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return 0, domain.ErrUnauthenticated
	}
	return id, nil
}
