package evidences

import (
	"context"

	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/pkg/pagination"
)

// System defines the public contract for evidence domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Evidence], error)

	Find(ctx context.Context, id int64) (*Evidence, error)

	// ForSegment returns the relation's evidences on a segment in form order.
	ForSegment(ctx context.Context, relationID, segmentID int64) ([]Evidence, error)
	// ForDocument returns the relation's evidences across a document's segments in form order.
	ForDocument(ctx context.Context, relationID, documentID int64) ([]Evidence, error)

	// EnsureForSegment inserts a pending evidence for every left/right occurrence pair of
	// the relation's kinds inside the segment that has none yet. Existing rows are untouched.
	EnsureForSegment(ctx context.Context, rel *relations.Relation, segmentID int64) (int64, error)
	// EnsureForDocument applies EnsureForSegment to every segment of the document.
	EnsureForDocument(ctx context.Context, rel *relations.Relation, documentID int64) (int64, error)

	// SaveLabels applies label changes in one transaction, stamping judge and modification date.
	SaveLabels(ctx context.Context, changes []Change) error

	// EachLabeled streams the relation's labeled evidences in form order.
	EachLabeled(ctx context.Context, relationID int64, fn func(Evidence) error) error
}
