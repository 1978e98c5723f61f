package relations

import (
	"context"

	"github.com/JaimeStill/labeler/pkg/pagination"
)

// System defines the public contract for relation domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Relation], error)

	All(ctx context.Context) ([]Relation, error)
	Find(ctx context.Context, id int64) (*Relation, error)
	Progress(ctx context.Context) (map[int64]Progress, error)

	// NextSegment returns the id of the next segment to label, or nil when none remain.
	// Segments with pending evidence come first, then matching segments without any
	// evidence, then segments holding a skipped evidence, each in (document, offset) order.
	NextSegment(ctx context.Context, rel *Relation) (*int64, error)
	// NextDocument returns the document of the next segment to label, or nil.
	NextDocument(ctx context.Context, rel *Relation) (*int64, error)

	// LabeledSegmentIDs returns the segments with at least one labeled evidence,
	// ordered by document and offset.
	LabeledSegmentIDs(ctx context.Context, relationID int64) ([]int64, error)
	// LabeledDocumentIDs returns the documents with at least one labeled evidence, ordered by id.
	LabeledDocumentIDs(ctx context.Context, relationID int64) ([]int64, error)
}
