package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Domain sentinels. Services wrap these with context via fmt.Errorf("...: %w").
var (
	// ErrInvalidArgument covers malformed identifiers and self-swipes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidSender means a message sender is not a participant of the match.
	ErrInvalidSender = errors.New("sender is not a participant of this match")

	// ErrInvalidMatch means a message references a match that does not exist.
	ErrInvalidMatch = errors.New("match does not exist")

	// ErrNotFound is a generic lookup miss.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthenticated covers missing/invalid credentials and tokens.
	// The message is intentionally generic: provider detail never reaches users.
	ErrUnauthenticated = errors.New("invalid email or password")

	// ErrMessageBlocked means the moderation oracle classified the text unsafe.
	ErrMessageBlocked = errors.New("message blocked by moderation")
)

// HTTPStatus maps domain and infra errors onto HTTP status codes.
// Centralized here so handlers stay free of error-classification logic.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidSender):
		return http.StatusBadRequest
	case errors.Is(err, ErrMessageBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidMatch), errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
