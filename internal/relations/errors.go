package relations

import (
	"errors"
	"net/http"
)

// Domain errors for relation operations.
var (
	ErrNotFound  = errors.New("relation not found")
	ErrDuplicate = errors.New("relation already exists")
	ErrInvalidID = errors.New("invalid relation id")
)

// MapHTTPStatus maps relation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
