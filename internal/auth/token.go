package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const signingMethod = "HS256"

// TokenConfig configures session token signing.
type TokenConfig struct {
	Secret string
	Issuer string
	Now    func() time.Time
}

// TokenCodec issues and validates stateless HS256 session tokens.
// The key is fixed for the life of the process; rotating it invalidates
// every outstanding token.
type TokenCodec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// sessionClaims is the wire shape of a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// NewTokenCodec validates cfg and builds a codec.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenCodec{
		key:    []byte(secret),
		issuer: strings.TrimSpace(cfg.Issuer),
		now:    cfg.Now,
	}, nil
}

// Issue signs a token for identity that expires ttl from now.
func (c *TokenCodec) Issue(identity Identity, ttl time.Duration) (string, time.Time, error) {
	if !identity.Valid() {
		return "", time.Time{}, errors.New("identity is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("token ttl must be positive")
	}

	issuedAt := c.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Email: identity.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time.UTC(), nil
}

// Validate checks the signature first and expiry second, returning the
// embedded identity. Every failure wraps ErrUnauthenticated.
func (c *TokenCodec) Validate(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrTokenMalformed
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Identity{}, mapJWTError(err)
	}

	if parsed.ExpiresAt == nil {
		return Identity{}, fmt.Errorf("%w: exp is required", ErrTokenMalformed)
	}
	if c.now().After(parsed.ExpiresAt.Time) {
		return Identity{}, ErrTokenExpired
	}
	if c.issuer != "" && parsed.Issuer != c.issuer {
		return Identity{}, fmt.Errorf("%w: issuer mismatch", ErrTokenMalformed)
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("%w: subject is invalid", ErrTokenMalformed)
	}

	return Identity{UserID: userID, Email: parsed.Email}, nil
}

// mapJWTError translates jwt library errors into the token taxonomy.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return fmt.Errorf("%w: signature is invalid", ErrTokenMalformed)
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return fmt.Errorf("%w: alg is invalid", ErrTokenMalformed)
	}
	return ErrTokenMalformed
}
