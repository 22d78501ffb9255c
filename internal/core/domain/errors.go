package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these,
// so the transport layer can map them without knowing individual sentinels.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

var ErrUnmodifiable = errors.New("care request is closed and can no longer be modified")
var ErrInvalidCredentials = errors.New("invalid credentials")

var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
var ErrUserExists = fmt.Errorf("%w: username already taken", ErrConflict)
var ErrRoleAlreadySet = fmt.Errorf("%w: role already chosen", ErrInvalidState)

var ErrCareRequestNotFound = fmt.Errorf("care request %w", ErrNotFound)
var ErrDuplicateRequest = fmt.Errorf("%w: idempotency key already used", ErrConflict)
var ErrProviderNotFound = fmt.Errorf("provider %w", ErrNotFound)
var ErrProviderStatusNotFound = fmt.Errorf("provider status %w", ErrNotFound)

var ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrInvalidState)

// ErrStatusChanged is returned by conditional writes when the stored status
// no longer matches the status the caller observed.
var ErrStatusChanged = fmt.Errorf("%w: status changed concurrently", ErrInvalidState)

// NewValidationError returns an ErrValidation carrying a caller-facing message.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
