package segments

import (
	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "text_segments", "s").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("offset_start", "Offset").
	Project("offset_end", "OffsetEnd")

var occurrenceProjection = query.
	NewProjectionMap("public", "entity_occurrences", "eo").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("offset_start", "Offset").
	Project("offset_end", "OffsetEnd").
	Project("alias", "Alias").
	Join("public", "entities", "en", "JOIN", "en.id = eo.entity_id").
	Project("key", "EntityKey").
	Join("public", "entity_kinds", "k", "JOIN", "k.id = en.kind_id").
	Project("name", "EntityKind")

func scanSegment(s repository.Scanner) (Segment, error) {
	var seg Segment
	err := s.Scan(&seg.ID, &seg.DocumentID, &seg.Offset, &seg.OffsetEnd)
	return seg, err
}

func scanOccurrence(s repository.Scanner) (EntityOccurrence, error) {
	var eo EntityOccurrence
	err := s.Scan(
		&eo.ID,
		&eo.DocumentID,
		&eo.Offset,
		&eo.OffsetEnd,
		&eo.Alias,
		&eo.EntityKey,
		&eo.EntityKind,
	)
	return eo, err
}
