package domain

import "time"

// DateLayout is the wire and storage format for due dates.
const DateLayout = "2006-01-02"

// Task represents a dated to-do item owned by exactly one user.
type Task struct {
	ID          int64
	UUID        string
	OwnerID     int64
	Title       string
	Description string
	DueDate     *time.Time
	Completed   bool
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// SoftDelete flags the task as deleted without erasing its data.
func (t *Task) SoftDelete(at time.Time) {
	t.Deleted = true
	t.DeletedAt = &at
}

// NormalizeDate truncates t to a calendar date in UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the inclusive first and last day of the given month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
