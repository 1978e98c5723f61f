package api

import (
	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/exports"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/internal/segments"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Relations relations.System
	Documents documents.System
	Segments  segments.System
	Evidences evidences.System
	Exports   exports.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	relationsSystem := relations.New(db, runtime.Logger, runtime.Pagination)
	docsSystem := documents.New(db, runtime.Logger, runtime.Pagination)
	segmentsSystem := segments.New(db, docsSystem, runtime.Logger)
	evidencesSystem := evidences.New(db, runtime.Logger, runtime.Pagination)

	exportsSystem := exports.New(
		relationsSystem,
		evidencesSystem,
		runtime.Storage,
		runtime.Logger,
		runtime.ExportConcurrency,
	)

	return &Domain{
		Relations: relationsSystem,
		Documents: docsSystem,
		Segments:  segmentsSystem,
		Evidences: evidencesSystem,
		Exports:   exportsSystem,
	}
}
