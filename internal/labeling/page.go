package labeling

import (
	"net/http"

	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/internal/segments"
)

// page memoizes the records one labeling request loads, so building the form and
// rendering it read each of them once.
type page struct {
	h *Handler
	r *http.Request

	relation  *relations.Relation
	segment   *segments.Hydrated
	document  *documents.Document
	evidences []evidences.Evidence
	loaded    bool
}

func newPage(h *Handler, r *http.Request) *page {
	return &page{h: h, r: r}
}

// Relation loads the relation named by the relationID path value.
func (p *page) Relation() (*relations.Relation, error) {
	if p.relation != nil {
		return p.relation, nil
	}

	id, err := pathID(p.r, "relationID")
	if err != nil {
		return nil, err
	}

	rel, err := p.h.domain.Relations.Find(p.r.Context(), id)
	if err != nil {
		return nil, err
	}
	p.relation = rel
	return rel, nil
}

// Segment loads and hydrates the segment named by the segmentID path value,
// loading its document along the way.
func (p *page) Segment() (*segments.Hydrated, error) {
	if p.segment != nil {
		return p.segment, nil
	}

	id, err := pathID(p.r, "segmentID")
	if err != nil {
		return nil, err
	}

	ctx := p.r.Context()
	seg, err := p.h.domain.Segments.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := p.h.domain.Documents.Find(ctx, seg.DocumentID)
	if err != nil {
		return nil, err
	}

	hydrated, err := p.h.domain.Segments.HydrateAll(ctx, doc, []segments.Segment{*seg})
	if err != nil {
		return nil, err
	}

	p.document = doc
	p.segment = &hydrated[0]
	return p.segment, nil
}

// Document loads the document named by the documentID path value, or the
// document of the loaded segment on segment pages.
func (p *page) Document() (*documents.Document, error) {
	if p.document != nil {
		return p.document, nil
	}

	if p.r.PathValue("segmentID") != "" {
		if _, err := p.Segment(); err != nil {
			return nil, err
		}
		return p.document, nil
	}

	id, err := pathID(p.r, "documentID")
	if err != nil {
		return nil, err
	}

	doc, err := p.h.domain.Documents.Find(p.r.Context(), id)
	if err != nil {
		return nil, err
	}
	p.document = doc
	return doc, nil
}

// SegmentEvidences loads the relation's evidences on the page's segment.
func (p *page) SegmentEvidences() ([]evidences.Evidence, error) {
	if p.loaded {
		return p.evidences, nil
	}

	rel, err := p.Relation()
	if err != nil {
		return nil, err
	}
	seg, err := p.Segment()
	if err != nil {
		return nil, err
	}

	evs, err := p.h.domain.Evidences.ForSegment(p.r.Context(), rel.ID, seg.ID)
	if err != nil {
		return nil, err
	}
	p.evidences, p.loaded = evs, true
	return evs, nil
}

// DocumentEvidences loads the relation's evidences across the page's document.
func (p *page) DocumentEvidences() ([]evidences.Evidence, error) {
	if p.loaded {
		return p.evidences, nil
	}

	rel, err := p.Relation()
	if err != nil {
		return nil, err
	}
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}

	evs, err := p.h.domain.Evidences.ForDocument(p.r.Context(), rel.ID, doc.ID)
	if err != nil {
		return nil, err
	}
	p.evidences, p.loaded = evs, true
	return evs, nil
}
