package auth

import (
	"context"
	"errors"
	"testing"
)

func TestCheckOwnership(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		ownerID  int64
		wantErr  error
	}{
		{name: "owner", identity: Identity{UserID: 1}, ownerID: 1},
		{name: "other user", identity: Identity{UserID: 2}, ownerID: 1, wantErr: ErrForbidden},
		{name: "no identity", identity: Identity{}, ownerID: 0, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnership(tt.identity, tt.ownerID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity in empty context")
	}

	ctx := WithIdentity(context.Background(), Identity{UserID: 3, Email: "a@x.com"})
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("expected identity")
	}
	if identity.UserID != 3 || identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, ok := IdentityFromContext(WithIdentity(context.Background(), Identity{})); ok {
		t.Fatal("expected zero identity to be rejected")
	}
}
