package domain

import "time"

// User represents a registered account. Email is unique and compared case-sensitively.
type User struct {
	ID           int64
	UUID         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
