package segments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

type repo struct {
	db     *sql.DB
	docs   documents.System
	logger *slog.Logger
}

// New creates a segment repository implementing the System interface.
// Document tokens are read through docs.
func New(db *sql.DB, docs documents.System, logger *slog.Logger) System {
	return &repo{
		db:     db,
		docs:   docs,
		logger: logger.With("system", "segments"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, id int64) (*Segment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	seg, err := repository.QueryOne(ctx, r.db, q, args, scanSegment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &seg, nil
}

func (r *repo) WithEvidence(ctx context.Context, documentID, relationID int64) ([]Segment, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE s.document_id = $1
		  AND EXISTS (
			SELECT 1 FROM labeled_relation_evidences e
			WHERE e.segment_id = s.id AND e.relation_id = $2
		  )
		ORDER BY s.offset_start, s.id`,
		projection.Columns(), projection.From())

	segs, err := repository.QueryMany(ctx, r.db, q, []any{documentID, relationID}, scanSegment)
	if err != nil {
		return nil, fmt.Errorf("query segments with evidence: %w", err)
	}
	return segs, nil
}

func (r *repo) Hydrate(ctx context.Context, seg Segment) (*Hydrated, error) {
	doc, err := r.docs.Find(ctx, seg.DocumentID)
	if err != nil {
		return nil, err
	}

	hydrated, err := r.HydrateAll(ctx, doc, []Segment{seg})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (r *repo) HydrateAll(ctx context.Context, doc *documents.Document, segs []Segment) ([]Hydrated, error) {
	occurrences, err := r.occurrences(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	out := make([]Hydrated, 0, len(segs))
	for _, seg := range segs {
		h := Hydrated{
			Segment:     seg,
			Tokens:      doc.Slice(seg.Offset, seg.OffsetEnd),
			Occurrences: []EntityOccurrence{},
		}
		for _, eo := range occurrences {
			if seg.Contains(eo) {
				h.Occurrences = append(h.Occurrences, eo)
			}
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *repo) occurrences(ctx context.Context, documentID int64) ([]EntityOccurrence, error) {
	q, args := query.
		NewBuilder(occurrenceProjection, query.SortField{Field: "Offset"}, query.SortField{Field: "ID"}).
		WhereEquals("DocumentID", documentID).
		Build()

	eos, err := repository.QueryMany(ctx, r.db, q, args, scanOccurrence)
	if err != nil {
		return nil, fmt.Errorf("query entity occurrences: %w", err)
	}
	return eos, nil
}
