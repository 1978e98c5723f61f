package relations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/labeler/pkg/pagination"
	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

// matchingSegment restricts text_segments s to segments holding an occurrence of the
// left kind ($2) and a distinct occurrence of the right kind ($3).
const matchingSegment = `EXISTS (
		SELECT 1
		FROM entity_occurrences lo
		JOIN entities le ON le.id = lo.entity_id
		JOIN entity_occurrences ro ON ro.document_id = lo.document_id AND ro.id <> lo.id
		JOIN entities re ON re.id = ro.entity_id
		WHERE lo.document_id = s.document_id
		  AND lo.offset_start >= s.offset_start AND lo.offset_end <= s.offset_end
		  AND ro.offset_start >= s.offset_start AND ro.offset_end <= s.offset_end
		  AND le.kind_id = $2 AND re.kind_id = $3
	)`

type selectionStep struct {
	name      string
	sql       string
	withKinds bool
}

var nextSegmentSteps = []selectionStep{
	{
		name: "pending",
		sql: `
			SELECT s.id, s.document_id FROM text_segments s
			JOIN labeled_relation_evidences e ON e.segment_id = s.id
			WHERE e.relation_id = $1 AND e.label IS NULL
			ORDER BY s.document_id, s.offset_start, s.id
			LIMIT 1`,
	},
	{
		name: "unseen",
		sql: `
			SELECT s.id, s.document_id FROM text_segments s
			WHERE ` + matchingSegment + `
			  AND NOT EXISTS (
				SELECT 1 FROM labeled_relation_evidences e
				WHERE e.segment_id = s.id AND e.relation_id = $1
			  )
			ORDER BY s.document_id, s.offset_start, s.id
			LIMIT 1`,
		withKinds: true,
	},
	{
		name: "skipped",
		sql: `
			SELECT s.id, s.document_id FROM text_segments s
			JOIN labeled_relation_evidences e ON e.segment_id = s.id
			WHERE e.relation_id = $1 AND e.label = 'SKIP'
			ORDER BY s.document_id, s.offset_start, s.id
			LIMIT 1`,
	},
}

type target struct {
	segmentID  int64
	documentID int64
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a relation repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "relations"),
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
) (*pagination.PageResult[Relation], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "LeftEntityKind", "RightEntityKind")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count relations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRelation)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) All(ctx context.Context) ([]Relation, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()
	items, err := repository.QueryMany(ctx, r.db, q, args, scanRelation)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Relation, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rel, err := repository.QueryOne(ctx, r.db, q, args, scanRelation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rel, nil
}

func (r *repo) Progress(ctx context.Context) (map[int64]Progress, error) {
	q := `
		SELECT relation_id,
		       COUNT(*),
		       COUNT(label),
		       COUNT(*) FILTER (WHERE label IS NULL),
		       COUNT(*) FILTER (WHERE label = 'SKIP')
		FROM labeled_relation_evidences
		GROUP BY relation_id`

	rows, err := repository.QueryMany(ctx, r.db, q, nil, scanProgress)
	if err != nil {
		return nil, fmt.Errorf("query relation progress: %w", err)
	}

	progress := make(map[int64]Progress, len(rows))
	for _, p := range rows {
		progress[p.RelationID] = p
	}
	return progress, nil
}

func (r *repo) NextSegment(ctx context.Context, rel *Relation) (*int64, error) {
	t, err := r.next(ctx, rel)
	if err != nil || t == nil {
		return nil, err
	}
	return &t.segmentID, nil
}

func (r *repo) NextDocument(ctx context.Context, rel *Relation) (*int64, error) {
	t, err := r.next(ctx, rel)
	if err != nil || t == nil {
		return nil, err
	}
	return &t.documentID, nil
}

func (r *repo) LabeledSegmentIDs(ctx context.Context, relationID int64) ([]int64, error) {
	q := `
		SELECT s.id FROM text_segments s
		WHERE EXISTS (
			SELECT 1 FROM labeled_relation_evidences e
			WHERE e.segment_id = s.id AND e.relation_id = $1 AND e.label IS NOT NULL
		)
		ORDER BY s.document_id, s.offset_start, s.id`

	ids, err := repository.QueryMany(ctx, r.db, q, []any{relationID}, repository.ScanID)
	if err != nil {
		return nil, fmt.Errorf("query labeled segments: %w", err)
	}
	return ids, nil
}

func (r *repo) LabeledDocumentIDs(ctx context.Context, relationID int64) ([]int64, error) {
	q := `
		SELECT DISTINCT s.document_id FROM text_segments s
		JOIN labeled_relation_evidences e ON e.segment_id = s.id
		WHERE e.relation_id = $1 AND e.label IS NOT NULL
		ORDER BY s.document_id`

	ids, err := repository.QueryMany(ctx, r.db, q, []any{relationID}, repository.ScanID)
	if err != nil {
		return nil, fmt.Errorf("query labeled documents: %w", err)
	}
	return ids, nil
}

func (r *repo) next(ctx context.Context, rel *Relation) (*target, error) {
	for _, step := range nextSegmentSteps {
		args := []any{rel.ID}
		if step.withKinds {
			args = append(args, rel.LeftEntityKindID, rel.RightEntityKindID)
		}

		t, err := repository.QueryOptional(ctx, r.db, step.sql, args, scanTarget)
		if err != nil {
			return nil, fmt.Errorf("select %s segment: %w", step.name, err)
		}
		if t != nil {
			r.logger.Debug("next segment selected", "relation", rel.ID, "step", step.name, "segment", t.segmentID)
			return t, nil
		}
	}
	return nil, nil
}

func scanTarget(s repository.Scanner) (target, error) {
	var t target
	err := s.Scan(&t.segmentID, &t.documentID)
	return t, err
}
