package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "calendar.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func openRepositories(t *testing.T) (*sql.DB, repository.UserRepository, repository.TaskRepository) {
	t.Helper()

	db := openTempDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	if err := users.Init(context.Background()); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := tasks.Init(context.Background()); err != nil {
		t.Fatalf("init tasks: %v", err)
	}
	return db, users, tasks
}

func createUser(t *testing.T, users repository.UserRepository, email string) *domain.User {
	t.Helper()

	user := &domain.User{UUID: uuid.NewString(), Email: email, PasswordHash: "hash"}
	if _, err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}
