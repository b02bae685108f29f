package sqlite

import (
	"context"
	"errors"
	"testing"

	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
)

func TestUserCreateAndLookup(t *testing.T) {
	_, users, _ := openRepositories(t)
	ctx := context.Background()

	created := createUser(t, users, "a@x.com")
	if created.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID || byEmail.UUID != created.UUID || byEmail.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	byID, err := users.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != "a@x.com" {
		t.Fatalf("expected email a@x.com, got %q", byID.Email)
	}
}

func TestUserEmailIsCaseSensitive(t *testing.T) {
	_, users, _ := openRepositories(t)
	ctx := context.Background()

	createUser(t, users, "a@x.com")

	if _, err := users.GetByEmail(ctx, "A@X.COM"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for different case, got %v", err)
	}
	exists, err := users.ExistsByEmail(ctx, "A@X.COM")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected different case to be a different email")
	}
}

func TestUserExistsByEmail(t *testing.T) {
	_, users, _ := openRepositories(t)
	ctx := context.Background()

	exists, err := users.ExistsByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected no user yet")
	}

	createUser(t, users, "a@x.com")

	exists, err = users.ExistsByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected user to exist")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	_, users, _ := openRepositories(t)

	first := createUser(t, users, "a@x.com")

	dup := &domain.User{UUID: "other-uuid", Email: "a@x.com", PasswordHash: "other"}
	_, err := users.Create(context.Background(), dup)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	got, err := users.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != first.ID || got.PasswordHash != "hash" {
		t.Fatalf("expected first user untouched, got %+v", got)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	_, users, _ := openRepositories(t)

	if _, err := users.GetByID(context.Background(), 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
