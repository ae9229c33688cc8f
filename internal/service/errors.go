package service

import (
	"errors"
	"fmt"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/db"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/youtube"
)

// ErrQuotaExhausted is returned when the daily YouTube quota threshold has been reached.
var ErrQuotaExhausted = errors.New("youtube api quota exhausted")

// ValidationError represents an invalid request parameter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError represents a channel, video or snapshot that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ProcessingError represents an upstream or storage failure.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether a failed operation may succeed when repeated.
// Invalid input, missing resources and spent quota are final for the day.
func IsRetryable(err error) bool {
	var (
		vErr  *ValidationError
		nfErr *NotFoundError
	)
	switch {
	case err == nil:
		return false
	case errors.As(err, &vErr), errors.As(err, &nfErr):
		return false
	case errors.Is(err, ErrQuotaExhausted), errors.Is(err, youtube.ErrQuotaExceeded):
		return false
	default:
		return true
	}
}

// translateError maps client and storage errors onto the service error types.
func translateError(err error, resource, id, action string) error {
	switch {
	case errors.Is(err, youtube.ErrChannelNotFound),
		errors.Is(err, youtube.ErrNotFound),
		errors.Is(err, db.ErrNotFound):
		return &NotFoundError{Resource: resource, ID: id}
	case errors.Is(err, youtube.ErrQuotaExceeded):
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	default:
		return &ProcessingError{Message: action, Cause: err}
	}
}
