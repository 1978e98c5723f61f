package exports

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/pkg/storage"
)

// ErrInvalidID indicates a malformed relation id.
var ErrInvalidID = errors.New("invalid relation id")

// MapHTTPStatus maps export errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, relations.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrEmptyKey), errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
