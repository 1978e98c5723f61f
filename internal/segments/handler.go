package segments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/labeler/pkg/handlers"
	"github.com/JaimeStill/labeler/pkg/routes"
)

// Handler provides HTTP endpoints for segment operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// Detail is a hydrated segment with its display tokens.
type Detail struct {
	Hydrated
	RichTokens []RichToken `json:"rich_tokens"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "segments"),
	}
}

// Routes returns the route group definition for segment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/segments",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// Find returns a hydrated segment by its id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	seg, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	hydrated, err := h.sys.Hydrate(r.Context(), *seg)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Detail{
		Hydrated:   *hydrated,
		RichTokens: hydrated.RichTokens(),
	})
}
