package exports

import (
	"context"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
)

// System defines the public contract for dataset exports.
type System interface {
	Handler() *Handler

	// Export writes the relation's labeled evidence to a new blob.
	Export(ctx context.Context, relationID int64) (*Export, error)
	// ExportAll exports every relation, running a bounded number of exports at once.
	ExportAll(ctx context.Context) ([]Export, error)
}

// RelationSource is the part of the relations system exports read.
type RelationSource interface {
	All(ctx context.Context) ([]relations.Relation, error)
	Find(ctx context.Context, id int64) (*relations.Relation, error)
}

// EvidenceSource streams labeled evidence.
type EvidenceSource interface {
	EachLabeled(ctx context.Context, relationID int64, fn func(evidences.Evidence) error) error
}
