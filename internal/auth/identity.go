// Package auth holds the proof-of-identity primitives: password hashing,
// session token issuance/validation and the ownership guard.
package auth

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates a missing, malformed or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTokenMalformed indicates a token that failed parsing or signature checks.
	ErrTokenMalformed = fmt.Errorf("%w: token is invalid", ErrUnauthenticated)
	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = fmt.Errorf("%w: token is expired", ErrUnauthenticated)
	// ErrForbidden indicates the caller does not own the target resource.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the caller resolved from a valid session token.
type Identity struct {
	UserID int64
	Email  string
}

// Valid reports whether the identity references a user.
func (i Identity) Valid() bool {
	return i.UserID > 0
}

type identityContextKey struct{}

// WithIdentity returns a copy of ctx carrying the resolved identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || !identity.Valid() {
		return Identity{}, false
	}
	return identity, true
}
