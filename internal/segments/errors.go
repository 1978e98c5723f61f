package segments

import (
	"errors"
	"net/http"
)

// Domain errors for segment operations.
var (
	ErrNotFound  = errors.New("segment not found")
	ErrDuplicate = errors.New("segment already exists")
	ErrInvalidID = errors.New("invalid segment id")
)

// MapHTTPStatus maps segment domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
