package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"calendar-api/internal/auth"
	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// Session is the result of a successful login.
type Session struct {
	Token     string
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(identity auth.Identity, ttl time.Duration) (string, time.Time, error)
}

// UserServiceConfig tunes registration and login.
type UserServiceConfig struct {
	// RegisterSecret gates registration when non-empty.
	RegisterSecret string
	TokenTTL       time.Duration
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, password, providedSecret string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users          repository.UserRepository
	hasher         auth.PasswordHasher
	tokens         TokenIssuer
	registerSecret string
	tokenTTL       time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(users repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, cfg UserServiceConfig) UserService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &userService{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		registerSecret: strings.TrimSpace(cfg.RegisterSecret),
		tokenTTL:       cfg.TokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, email, password, providedSecret string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	providedSecret = strings.TrimSpace(providedSecret)

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	if s.registerSecret != "" &&
		subtle.ConstantTimeCompare([]byte(providedSecret), []byte(s.registerSecret)) != 1 {
		return nil, ErrInvalidRegistrationSecret
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn the same bcrypt work as a real comparison
			_ = s.hasher.Verify(s.fallbackHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email}, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		UUID:      user.UUID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
