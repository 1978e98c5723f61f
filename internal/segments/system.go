package segments

import (
	"context"

	"github.com/JaimeStill/labeler/internal/documents"
)

// System defines the public contract for segment domain operations.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, id int64) (*Segment, error)

	// WithEvidence returns the document's segments holding at least one evidence
	// for the relation, ordered by offset.
	WithEvidence(ctx context.Context, documentID, relationID int64) ([]Segment, error)

	// Hydrate loads the segment's tokens and the occurrences inside its span.
	Hydrate(ctx context.Context, seg Segment) (*Hydrated, error)

	// HydrateAll hydrates segments of doc, loading the document's occurrences once.
	HydrateAll(ctx context.Context, doc *documents.Document, segs []Segment) ([]Hydrated, error)
}
