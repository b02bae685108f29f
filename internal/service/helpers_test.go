package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"calendar-api/internal/auth"
	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
	"calendar-api/internal/repository/sqlite"
)

type testEnv struct {
	db     *sql.DB
	users  repository.UserRepository
	tasks  repository.TaskRepository
	codec  *auth.TokenCodec
	auth   UserService
	todos  TaskService
	hasher *auth.BcryptHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "calendar.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	users := sqlite.NewUserRepository(db)
	tasks := sqlite.NewTaskRepository(db)
	ctx := context.Background()
	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := tasks.Init(ctx); err != nil {
		t.Fatalf("init tasks: %v", err)
	}

	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: "test-secret", Issuer: "calendar-api"})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	return &testEnv{
		db:     db,
		users:  users,
		tasks:  tasks,
		codec:  codec,
		hasher: hasher,
		auth:   NewUserService(users, hasher, codec, UserServiceConfig{TokenTTL: time.Hour}),
		todos:  NewTaskService(tasks),
	}
}

// login registers email and returns the identity its token resolves to.
func (e *testEnv) login(t *testing.T, email string) auth.Identity {
	t.Helper()

	ctx := context.Background()
	if _, err := e.auth.Register(ctx, email, "pw1", ""); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	session, err := e.auth.Authenticate(ctx, email, "pw1")
	if err != nil {
		t.Fatalf("authenticate %s: %v", email, err)
	}
	identity, err := e.codec.Validate(session.Token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	return identity
}

func mustDate(t *testing.T, value string) *time.Time {
	t.Helper()

	parsed, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		t.Fatalf("parse date %s: %v", value, err)
	}
	return &parsed
}

func taskTitles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Title
	}
	return out
}
