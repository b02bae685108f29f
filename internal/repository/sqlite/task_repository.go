package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
)

const (
	createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL UNIQUE,
	owner_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date TEXT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_tasks_owner_due ON tasks(owner_id, due_date);
`

	selectTaskColumns = `
SELECT id, uuid, owner_id, title, description, due_date, completed, delete_flag, created_at, updated_at, deleted_at
FROM tasks`
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	if err := r.ensureTaskColumns(ctx); err != nil {
		return err
	}
	return nil
}

// ensureTaskColumns adds the soft-delete columns to databases created before they existed.
func (r *TaskRepository) ensureTaskColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `PRAGMA table_info(tasks)`)
	if err != nil {
		return fmt.Errorf("describe tasks table: %w", err)
	}
	defer rows.Close()

	columns := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan pragma table info: %w", err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pragma table info: %w", err)
	}
	rows.Close()

	addColumn := func(name, statement string) error {
		if _, exists := columns[name]; exists {
			return nil
		}
		if _, err := r.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
		return nil
	}

	if err := addColumn("delete_flag", `ALTER TABLE tasks ADD COLUMN delete_flag INTEGER NOT NULL DEFAULT 0`); err != nil {
		return err
	}
	if err := addColumn("deleted_at", `ALTER TABLE tasks ADD COLUMN deleted_at DATETIME NULL`); err != nil {
		return err
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (uuid, owner_id, title, description, due_date, completed, delete_flag, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		task.UUID,
		task.OwnerID,
		task.Title,
		task.Description,
		nullDate(task.DueDate),
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTaskColumns+`
WHERE id=? AND delete_flag=0`,
		id,
	)
	return scanTask(row)
}

// Mutate loads a live task, hands it to fn and writes the result back, all in one
// transaction. The owner column is never part of the update.
func (r *TaskRepository) Mutate(ctx context.Context, id int64, fn repository.MutateFunc) (*domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	row := tx.QueryRowContext(ctx, selectTaskColumns+`
WHERE id=? AND delete_flag=0`,
		id,
	)
	task, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	if err := fn(task); err != nil {
		return nil, err
	}

	task.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
UPDATE tasks
SET title=?, description=?, due_date=?, completed=?, delete_flag=?, deleted_at=?, updated_at=?
WHERE id=?`,
		task.Title,
		task.Description,
		nullDate(task.DueDate),
		task.Completed,
		task.Deleted,
		nullTime(task.DeletedAt),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit task update: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return r.queryTasks(ctx, selectTaskColumns+`
WHERE owner_id=? AND delete_flag=0
ORDER BY due_date IS NULL, due_date ASC, id ASC`,
		ownerID,
	)
}

func (r *TaskRepository) ListByOwnerAndCompleted(ctx context.Context, ownerID int64, completed bool) ([]domain.Task, error) {
	return r.queryTasks(ctx, selectTaskColumns+`
WHERE owner_id=? AND completed=? AND delete_flag=0
ORDER BY due_date IS NULL, due_date ASC, id ASC`,
		ownerID,
		completed,
	)
}

func (r *TaskRepository) ListByOwnerAndDueDate(ctx context.Context, ownerID int64, date time.Time) ([]domain.Task, error) {
	return r.queryTasks(ctx, selectTaskColumns+`
WHERE owner_id=? AND due_date=? AND delete_flag=0
ORDER BY id ASC`,
		ownerID,
		date.Format(domain.DateLayout),
	)
}

// ListByOwnerAndDueDateRange returns tasks due within [start, end], both inclusive.
func (r *TaskRepository) ListByOwnerAndDueDateRange(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.Task, error) {
	return r.queryTasks(ctx, selectTaskColumns+`
WHERE owner_id=? AND due_date BETWEEN ? AND ? AND delete_flag=0
ORDER BY due_date ASC, id ASC`,
		ownerID,
		start.Format(domain.DateLayout),
		end.Format(domain.DateLayout),
	)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task      domain.Task
		dueDate   sql.NullString
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := scanner.Scan(
		&task.ID,
		&task.UUID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&dueDate,
		&task.Completed,
		&task.Deleted,
		&createdAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if dueDate.Valid && dueDate.String != "" {
		parsed, err := time.Parse(domain.DateLayout, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse due date %q: %w", dueDate.String, err)
		}
		task.DueDate = &parsed
	}
	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		task.DeletedAt = &t
	}

	return &task, nil
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateLayout)
}
