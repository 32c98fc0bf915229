package submissions

import (
	"errors"
	"net/http"
)

// Domain errors for submission operations.
var (
	ErrNotFound          = errors.New("submission not found")
	ErrDuplicate         = errors.New("submission already exists")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrInvalidFile       = errors.New("invalid file")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownField      = errors.New("unknown field key")
)

// MapHTTPStatus maps submission domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrUnknownField) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrInvalidTransition) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
