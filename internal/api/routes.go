package api

import (
	"net/http"

	"github.com/JaimeStill/labeler/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	storage := newStorageHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize)

	routes.Register(
		mux,
		domain.Relations.Handler().Routes(),
		domain.Documents.Handler().Routes(),
		domain.Segments.Handler().Routes(),
		domain.Evidences.Handler().Routes(),
		domain.Exports.Handler().Routes(),
		storage.routes(),
	)
}
