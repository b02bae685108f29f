package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"calendar-api/internal/auth"
	"calendar-api/internal/domain"
	"calendar-api/internal/repository"
	"calendar-api/internal/storage"
)

// ExportConfig conveys the export destination.
type ExportConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

// Export describes one uploaded snapshot of a user's tasks.
type Export struct {
	Key          string
	Size         int64
	URL          string
	LastModified *time.Time
}

// ExportService snapshots a user's tasks to object storage. Every object lives
// under a per-user prefix, so callers only ever see their own exports.
type ExportService interface {
	Export(ctx context.Context, identity auth.Identity) (*Export, error)
	ListExports(ctx context.Context, identity auth.Identity) ([]Export, error)
	DeleteExports(ctx context.Context, identity auth.Identity) error
}

type exportService struct {
	tasks   repository.TaskRepository
	users   repository.UserRepository
	storage storage.Service
	cfg     ExportConfig
	now     func() time.Time
}

func NewExportService(tasks repository.TaskRepository, users repository.UserRepository, store storage.Service, cfg ExportConfig) ExportService {
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "task-exports"
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	return &exportService{
		tasks:   tasks,
		users:   users,
		storage: store,
		cfg:     cfg,
		now:     time.Now,
	}
}

type exportDocument struct {
	ExportedAt string         `json:"exported_at"`
	Email      string         `json:"email"`
	Tasks      []exportedTask `json:"tasks"`
}

type exportedTask struct {
	ID          int64   `json:"id"`
	UUID        string  `json:"uuid"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (s *exportService) Export(ctx context.Context, identity auth.Identity) (*Export, error) {
	prefix, user, err := s.userPrefix(ctx, identity)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := exportDocument{
		ExportedAt: now.Format(time.RFC3339),
		Email:      user.Email,
		Tasks:      make([]exportedTask, len(tasks)),
	}
	for i := range tasks {
		doc.Tasks[i] = toExportedTask(tasks[i])
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := path.Join(prefix, fmt.Sprintf("tasks-%s-%s.json", now.Format("20060102T150405Z"), uuid.NewString()[:8]))
	if err := s.storage.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(body), "application/json"); err != nil {
		return nil, err
	}

	url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLExpiry)
	if err != nil {
		return nil, err
	}

	return &Export{
		Key:          key,
		Size:         int64(len(body)),
		URL:          url,
		LastModified: &now,
	}, nil
}

func (s *exportService) ListExports(ctx context.Context, identity auth.Identity) ([]Export, error) {
	prefix, _, err := s.userPrefix(ctx, identity)
	if err != nil {
		return nil, err
	}

	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, prefix+"/")
	if err != nil {
		return nil, err
	}

	exports := make([]Export, 0, len(objects))
	for _, obj := range objects {
		url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, obj.Key, s.cfg.URLExpiry)
		if err != nil {
			return nil, err
		}
		exports = append(exports, Export{
			Key:          obj.Key,
			Size:         obj.Size,
			URL:          url,
			LastModified: obj.LastModified,
		})
	}
	return exports, nil
}

func (s *exportService) DeleteExports(ctx context.Context, identity auth.Identity) error {
	prefix, _, err := s.userPrefix(ctx, identity)
	if err != nil {
		return err
	}
	return s.storage.DeletePrefix(ctx, s.cfg.Bucket, prefix+"/")
}

// userPrefix resolves the caller's object prefix, keyed by the opaque user uuid.
func (s *exportService) userPrefix(ctx context.Context, identity auth.Identity) (string, *domain.User, error) {
	if !identity.Valid() {
		return "", nil, ErrUnauthenticated
	}
	if s.storage == nil || s.cfg.Bucket == "" {
		return "", nil, ErrExportsDisabled
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return "", nil, err
	}
	if user.UUID == "" {
		return "", nil, fmt.Errorf("user %d has no uuid", user.ID)
	}
	return path.Join(s.cfg.KeyPrefix, user.UUID), user, nil
}

func toExportedTask(task domain.Task) exportedTask {
	out := exportedTask{
		ID:          task.ID,
		UUID:        task.UUID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		v := task.DueDate.Format(domain.DateLayout)
		out.DueDate = &v
	}
	return out
}
