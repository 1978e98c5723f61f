package exports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/labeler/pkg/handlers"
	"github.com/JaimeStill/labeler/pkg/routes"
)

// Handler provides HTTP endpoints for dataset exports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "exports"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/exports",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.ExportAll},
			{Method: "POST", Pattern: "/{relationID}", Handler: h.Export},
		},
	}
}

// Export writes one relation's labeled evidence and returns the export descriptor.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("relationID"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	exp, err := h.sys.Export(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, exp)
}

// ExportAll exports every relation.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	exps, err := h.sys.ExportAll(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, exps)
}
