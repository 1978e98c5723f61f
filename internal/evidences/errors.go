package evidences

import (
	"errors"
	"net/http"
)

// Domain errors for evidence operations.
var (
	ErrNotFound     = errors.New("evidence not found")
	ErrDuplicate    = errors.New("evidence already exists")
	ErrInvalidID    = errors.New("invalid evidence id")
	ErrInvalidLabel = errors.New("invalid evidence label")
)

// MapHTTPStatus maps evidence domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidLabel):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
