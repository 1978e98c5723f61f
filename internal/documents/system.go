package documents

import (
	"context"

	"github.com/JaimeStill/labeler/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	// Find returns the document with its tokens loaded.
	Find(ctx context.Context, id int64) (*Document, error)

	// FindByIdentifier looks a document up by the identifier assigned at ingestion.
	FindByIdentifier(ctx context.Context, identifier string) (*Document, error)
}
