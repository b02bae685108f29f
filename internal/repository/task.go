package repository

import (
	"context"
	"errors"
	"time"

	"calendar-api/internal/domain"
)

var (
	// ErrNotFound indicates a requested record is missing (or soft-deleted).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("record already exists")
)

// MutateFunc inspects and modifies a loaded task inside a store transaction.
// Returning an error aborts the transaction and nothing is written.
type MutateFunc func(task *domain.Task) error

// TaskRepository exposes persistence operations for Task aggregates.
// Every read excludes soft-deleted rows.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	Mutate(ctx context.Context, id int64, fn MutateFunc) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)
	ListByOwnerAndCompleted(ctx context.Context, ownerID int64, completed bool) ([]domain.Task, error)
	ListByOwnerAndDueDate(ctx context.Context, ownerID int64, date time.Time) ([]domain.Task, error)
	ListByOwnerAndDueDateRange(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.Task, error)
}
