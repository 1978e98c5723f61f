package evidences

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/pkg/pagination"
	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

// candidates selects every ordered pair of distinct occurrences inside a segment whose
// kinds match the relation ($1 relation, $3 left kind, $4 right kind). The segment
// restriction is appended by the caller and binds $2.
const candidates = `
	INSERT INTO labeled_relation_evidences
		(relation_id, segment_id, left_entity_occurrence_id, right_entity_occurrence_id)
	SELECT $1, s.id, lo.id, ro.id
	FROM text_segments s
	JOIN entity_occurrences lo ON lo.document_id = s.document_id
		AND lo.offset_start >= s.offset_start AND lo.offset_end <= s.offset_end
	JOIN entities le ON le.id = lo.entity_id
	JOIN entity_occurrences ro ON ro.document_id = s.document_id
		AND ro.offset_start >= s.offset_start AND ro.offset_end <= s.offset_end
		AND ro.id <> lo.id
	JOIN entities re ON re.id = ro.entity_id
	WHERE le.kind_id = $3 AND re.kind_id = $4 AND `

const candidatesConflict = `
	ON CONFLICT (relation_id, segment_id, left_entity_occurrence_id, right_entity_occurrence_id)
	DO NOTHING`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an evidence repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "evidences"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Evidence], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Label", "Judge", "LeftAlias", "RightAlias")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count evidences: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEvidence)
	if err != nil {
		return nil, fmt.Errorf("query evidences: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Evidence, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvidence)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) ForSegment(ctx context.Context, relationID, segmentID int64) ([]Evidence, error) {
	return r.inForm(ctx, Filters{RelationID: &relationID, SegmentID: &segmentID})
}

func (r *repo) ForDocument(ctx context.Context, relationID, documentID int64) ([]Evidence, error) {
	return r.inForm(ctx, Filters{RelationID: &relationID, DocumentID: &documentID})
}

func (r *repo) EnsureForSegment(ctx context.Context, rel *relations.Relation, segmentID int64) (int64, error) {
	return r.ensure(ctx, rel, "segment", "s.id = $2", segmentID)
}

func (r *repo) EnsureForDocument(ctx context.Context, rel *relations.Relation, documentID int64) (int64, error) {
	return r.ensure(ctx, rel, "document", "s.document_id = $2", documentID)
}

func (r *repo) SaveLabels(ctx context.Context, changes []Change) error {
	for _, c := range changes {
		if c.Label != nil && !ValidLabel(*c.Label) {
			return fmt.Errorf("%w: %q", ErrInvalidLabel, *c.Label)
		}
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		q := `
			UPDATE labeled_relation_evidences
			SET label = $2, judge = $3, modification_date = now()
			WHERE id = $1`

		for _, c := range changes {
			if err := repository.ExecExpectOne(ctx, tx, q, c.ID, c.Label, c.Judge); err != nil {
				return struct{}{}, fmt.Errorf("evidence %d: %w", c.ID, repository.MapError(err, ErrNotFound, ErrDuplicate))
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("labels saved", "count", len(changes))
	return nil
}

func (r *repo) EachLabeled(ctx context.Context, relationID int64, fn func(Evidence) error) error {
	labeled := true
	qb := query.NewBuilder(projection, formSort...)
	Filters{RelationID: &relationID, Labeled: &labeled}.Apply(qb)
	q, args := qb.Build()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query labeled evidences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return fmt.Errorf("scan evidence: %w", err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *repo) inForm(ctx context.Context, filters Filters) ([]Evidence, error) {
	qb := query.NewBuilder(projection, formSort...)
	filters.Apply(qb)
	q, args := qb.Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanEvidence)
	if err != nil {
		return nil, fmt.Errorf("query evidences: %w", err)
	}
	return items, nil
}

func (r *repo) ensure(ctx context.Context, rel *relations.Relation, kind, scope string, id int64) (int64, error) {
	q := candidates + scope + candidatesConflict

	result, err := r.db.ExecContext(ctx, q, rel.ID, id, rel.LeftEntityKindID, rel.RightEntityKindID)
	if err != nil {
		return 0, fmt.Errorf("materialize candidates: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		r.logger.Info("candidates materialized", "relation", rel.ID, kind, id, "inserted", inserted)
	}
	return inserted, nil
}
