package labeling_test

import (
	"context"
	"slices"

	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/internal/segments"
	"github.com/JaimeStill/labeler/pkg/pagination"
)

// corpus is an in-memory corpus shared by the mock systems.
type corpus struct {
	relation     relations.Relation
	document     documents.Document
	segments     []segments.Segment
	occurrences  []segments.EntityOccurrence
	evidences    []evidences.Evidence
	nextSegment  *int64
	nextDocument *int64
	labeledSegs  []int64
	labeledDocs  []int64

	ensured []int64
	saved   []evidences.Change
}

func newCorpus() *corpus {
	return &corpus{
		relation: bornIn,
		document: documents.Document{
			ID:              2,
			HumanIdentifier: "doc-2",
			Tokens:          []string{"John", "Smith", "was", "born", "in", "Paris", ".", "He", "lives", "in", "Rome", "."},
		},
		segments: []segments.Segment{
			{ID: 10, DocumentID: 2, Offset: 0, OffsetEnd: 7},
			{ID: 11, DocumentID: 2, Offset: 7, OffsetEnd: 12},
		},
		occurrences: []segments.EntityOccurrence{
			{ID: 31, DocumentID: 2, EntityKind: "person", Offset: 0, OffsetEnd: 2, Alias: "John Smith"},
			{ID: 32, DocumentID: 2, EntityKind: "location", Offset: 5, OffsetEnd: 6, Alias: "Paris"},
			{ID: 33, DocumentID: 2, EntityKind: "person", Offset: 7, OffsetEnd: 8, Alias: "He"},
			{ID: 34, DocumentID: 2, EntityKind: "location", Offset: 10, OffsetEnd: 11, Alias: "Rome"},
		},
		evidences: []evidences.Evidence{
			{
				ID: 5, RelationID: 3, SegmentID: 10, DocumentID: 2,
				LeftEOID: 31, LeftAlias: "John Smith", RightEOID: 32, RightAlias: "Paris",
				Label: strPtr(evidences.YesRelation), Judge: strPtr("alice"), ModificationDate: modified,
			},
			{
				ID: 9, RelationID: 3, SegmentID: 11, DocumentID: 2, SegmentOffset: 7,
				LeftEOID: 33, LeftAlias: "He", RightEOID: 34, RightAlias: "Rome",
				ModificationDate: modified,
			},
		},
	}
}

type mockRelations struct{ c *corpus }

func (m mockRelations) Handler() *relations.Handler { return nil }

func (m mockRelations) List(context.Context, pagination.PageRequest, relations.Filters) (*pagination.PageResult[relations.Relation], error) {
	return nil, nil
}

func (m mockRelations) All(context.Context) ([]relations.Relation, error) {
	return []relations.Relation{m.c.relation}, nil
}

func (m mockRelations) Find(_ context.Context, id int64) (*relations.Relation, error) {
	if id != m.c.relation.ID {
		return nil, relations.ErrNotFound
	}
	rel := m.c.relation
	return &rel, nil
}

func (m mockRelations) Progress(context.Context) (map[int64]relations.Progress, error) {
	return map[int64]relations.Progress{
		3: {RelationID: 3, Total: 2, Labeled: 1, Pending: 1},
	}, nil
}

func (m mockRelations) NextSegment(context.Context, *relations.Relation) (*int64, error) {
	return m.c.nextSegment, nil
}

func (m mockRelations) NextDocument(context.Context, *relations.Relation) (*int64, error) {
	return m.c.nextDocument, nil
}

func (m mockRelations) LabeledSegmentIDs(context.Context, int64) ([]int64, error) {
	return m.c.labeledSegs, nil
}

func (m mockRelations) LabeledDocumentIDs(context.Context, int64) ([]int64, error) {
	return m.c.labeledDocs, nil
}

type mockDocuments struct{ c *corpus }

func (m mockDocuments) Handler() *documents.Handler { return nil }

func (m mockDocuments) List(context.Context, pagination.PageRequest, documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, nil
}

func (m mockDocuments) Find(_ context.Context, id int64) (*documents.Document, error) {
	if id != m.c.document.ID {
		return nil, documents.ErrNotFound
	}
	doc := m.c.document
	return &doc, nil
}

func (m mockDocuments) FindByIdentifier(_ context.Context, identifier string) (*documents.Document, error) {
	if identifier != m.c.document.HumanIdentifier {
		return nil, documents.ErrNotFound
	}
	doc := m.c.document
	return &doc, nil
}

type mockSegments struct{ c *corpus }

func (m mockSegments) Handler() *segments.Handler { return nil }

func (m mockSegments) Find(_ context.Context, id int64) (*segments.Segment, error) {
	for _, s := range m.c.segments {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, segments.ErrNotFound
}

func (m mockSegments) WithEvidence(_ context.Context, documentID, relationID int64) ([]segments.Segment, error) {
	var out []segments.Segment
	for _, s := range m.c.segments {
		if s.DocumentID != documentID {
			continue
		}
		if slices.ContainsFunc(m.c.evidences, func(e evidences.Evidence) bool {
			return e.RelationID == relationID && e.SegmentID == s.ID
		}) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m mockSegments) Hydrate(ctx context.Context, seg segments.Segment) (*segments.Hydrated, error) {
	doc, err := mockDocuments(m).Find(ctx, seg.DocumentID)
	if err != nil {
		return nil, err
	}
	all, err := m.HydrateAll(ctx, doc, []segments.Segment{seg})
	if err != nil {
		return nil, err
	}
	return &all[0], nil
}

func (m mockSegments) HydrateAll(_ context.Context, doc *documents.Document, segs []segments.Segment) ([]segments.Hydrated, error) {
	out := make([]segments.Hydrated, len(segs))
	for i, s := range segs {
		h := segments.Hydrated{Segment: s, Tokens: doc.Slice(s.Offset, s.OffsetEnd)}
		for _, eo := range m.c.occurrences {
			if s.Contains(eo) {
				h.Occurrences = append(h.Occurrences, eo)
			}
		}
		out[i] = h
	}
	return out, nil
}

type mockEvidences struct{ c *corpus }

func (m mockEvidences) Handler() *evidences.Handler { return nil }

func (m mockEvidences) List(context.Context, pagination.PageRequest, evidences.Filters) (*pagination.PageResult[evidences.Evidence], error) {
	return nil, nil
}

func (m mockEvidences) Find(_ context.Context, id int64) (*evidences.Evidence, error) {
	for _, e := range m.c.evidences {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, evidences.ErrNotFound
}

func (m mockEvidences) ForSegment(_ context.Context, relationID, segmentID int64) ([]evidences.Evidence, error) {
	return m.filter(func(e evidences.Evidence) bool {
		return e.RelationID == relationID && e.SegmentID == segmentID
	}), nil
}

func (m mockEvidences) ForDocument(_ context.Context, relationID, documentID int64) ([]evidences.Evidence, error) {
	return m.filter(func(e evidences.Evidence) bool {
		return e.RelationID == relationID && e.DocumentID == documentID
	}), nil
}

func (m mockEvidences) EnsureForSegment(_ context.Context, _ *relations.Relation, segmentID int64) (int64, error) {
	m.c.ensured = append(m.c.ensured, segmentID)
	return 0, nil
}

func (m mockEvidences) EnsureForDocument(_ context.Context, _ *relations.Relation, documentID int64) (int64, error) {
	m.c.ensured = append(m.c.ensured, documentID)
	return 0, nil
}

func (m mockEvidences) SaveLabels(_ context.Context, changes []evidences.Change) error {
	for _, c := range changes {
		if _, err := m.Find(context.Background(), c.ID); err != nil {
			return err
		}
	}
	m.c.saved = append(m.c.saved, changes...)
	return nil
}

func (m mockEvidences) EachLabeled(_ context.Context, relationID int64, fn func(evidences.Evidence) error) error {
	for _, e := range m.c.evidences {
		if e.RelationID == relationID && e.Label != nil {
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m mockEvidences) filter(keep func(evidences.Evidence) bool) []evidences.Evidence {
	var out []evidences.Evidence
	for _, e := range m.c.evidences {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
