package service

import (
	"errors"

	"calendar-api/internal/auth"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// It never says whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRegistrationSecret indicates the registration secret is incorrect.
	ErrInvalidRegistrationSecret = errors.New("invalid registration secret")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidInput is returned for requests rejected before reaching the store.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTaskNotFound is returned for absent or soft-deleted tasks.
	ErrTaskNotFound = errors.New("task not found")
	// ErrExportsDisabled is returned when no export bucket is configured.
	ErrExportsDisabled = errors.New("task exports are not configured")

	ErrUnauthenticated = auth.ErrUnauthenticated
	ErrForbidden       = auth.ErrForbidden
)
