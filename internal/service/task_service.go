package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"calendar-api/internal/auth"
	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
)

// TaskInput carries the caller-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Completed   bool
}

// TaskService coordinates ownership-gated task operations backed by repositories.
type TaskService interface {
	CreateTask(ctx context.Context, identity auth.Identity, input TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, identity auth.Identity, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context, identity auth.Identity) ([]domain.Task, error)
	ListTasksByCompletion(ctx context.Context, identity auth.Identity, completed bool) ([]domain.Task, error)
	ListTasksByDate(ctx context.Context, identity auth.Identity, date time.Time) ([]domain.Task, error)
	ListTasksByMonth(ctx context.Context, identity auth.Identity, year int, month time.Month) ([]domain.Task, error)
	UpdateTask(ctx context.Context, identity auth.Identity, id int64, input TaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, identity auth.Identity, id int64) error
}

type taskService struct {
	tasks repository.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{
		tasks: tasks,
		now:   time.Now,
	}
}

func (s *taskService) CreateTask(ctx context.Context, identity auth.Identity, input TaskInput) (*domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}
	input, err := normalizeTaskInput(input)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		UUID:        uuid.NewString(),
		OwnerID:     identity.UserID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Completed:   input.Completed,
	}

	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, identity auth.Identity, id int64) (*domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, mapTaskError(id, err)
	}
	if err := auth.CheckOwnership(identity, task.OwnerID); err != nil {
		return nil, err
	}
	return task, nil
}

// The list queries are owner-scoped in SQL, so no per-row ownership check is needed.

func (s *taskService) ListTasks(ctx context.Context, identity auth.Identity) ([]domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}
	return s.tasks.ListByOwner(ctx, identity.UserID)
}

func (s *taskService) ListTasksByCompletion(ctx context.Context, identity auth.Identity, completed bool) ([]domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}
	return s.tasks.ListByOwnerAndCompleted(ctx, identity.UserID, completed)
}

func (s *taskService) ListTasksByDate(ctx context.Context, identity auth.Identity, date time.Time) ([]domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}
	return s.tasks.ListByOwnerAndDueDate(ctx, identity.UserID, domain.NormalizeDate(date))
}

func (s *taskService) ListTasksByMonth(ctx context.Context, identity auth.Identity, year int, month time.Month) ([]domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	start, end := domain.MonthRange(year, month)
	return s.tasks.ListByOwnerAndDueDateRange(ctx, identity.UserID, start, end)
}

func (s *taskService) UpdateTask(ctx context.Context, identity auth.Identity, id int64, input TaskInput) (*domain.Task, error) {
	if !identity.Valid() {
		return nil, ErrUnauthenticated
	}
	input, err := normalizeTaskInput(input)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.Mutate(ctx, id, func(task *domain.Task) error {
		if err := auth.CheckOwnership(identity, task.OwnerID); err != nil {
			return err
		}
		task.Title = input.Title
		task.Description = input.Description
		task.DueDate = input.DueDate
		task.Completed = input.Completed
		return nil
	})
	if err != nil {
		return nil, mapTaskError(id, err)
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, identity auth.Identity, id int64) error {
	if !identity.Valid() {
		return ErrUnauthenticated
	}

	_, err := s.tasks.Mutate(ctx, id, func(task *domain.Task) error {
		if err := auth.CheckOwnership(identity, task.OwnerID); err != nil {
			return err
		}
		task.SoftDelete(s.now().UTC())
		return nil
	})
	if err != nil {
		return mapTaskError(id, err)
	}
	return nil
}

func normalizeTaskInput(input TaskInput) (TaskInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return TaskInput{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	input.Description = strings.TrimSpace(input.Description)
	if input.DueDate != nil {
		d := domain.NormalizeDate(*input.DueDate)
		input.DueDate = &d
	}
	return input, nil
}

func mapTaskError(id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
	}
	return err
}
