package evidences

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "labeled_relation_evidences", "e").
	Project("id", "ID").
	Project("relation_id", "RelationID").
	Project("segment_id", "SegmentID").
	Project("left_entity_occurrence_id", "LeftEOID").
	Project("right_entity_occurrence_id", "RightEOID").
	Project("label", "Label").
	Project("judge", "Judge").
	Project("modification_date", "ModificationDate").
	Join("public", "text_segments", "s", "JOIN", "s.id = e.segment_id").
	Project("document_id", "DocumentID").
	Project("offset_start", "SegmentOffset").
	Join("public", "entity_occurrences", "lo", "JOIN", "lo.id = e.left_entity_occurrence_id").
	Project("alias", "LeftAlias").
	Join("public", "entity_occurrences", "ro", "JOIN", "ro.id = e.right_entity_occurrence_id").
	Project("alias", "RightAlias")

var defaultSort = query.SortField{Field: "ID"}

// formSort orders evidences as they appear in labeling forms.
var formSort = []query.SortField{
	{Field: "DocumentID"},
	{Field: "SegmentOffset"},
	{Field: "ID"},
}

// Filters contains optional filtering criteria for evidence queries.
// Labeled selects labeled (true) or pending (false) evidences.
type Filters struct {
	RelationID *int64  `json:"relation_id,omitempty"`
	SegmentID  *int64  `json:"segment_id,omitempty"`
	DocumentID *int64  `json:"document_id,omitempty"`
	Label      *string `json:"label,omitempty"`
	Judge      *string `json:"judge,omitempty"`
	Labeled    *bool   `json:"labeled,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("RelationID", f.RelationID).
		WhereEquals("SegmentID", f.SegmentID).
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("Label", f.Label).
		WhereEquals("Judge", f.Judge).
		WherePresent("Label", f.Labeled)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed numeric and boolean values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	f.RelationID = parseID(values.Get("relation_id"))
	f.SegmentID = parseID(values.Get("segment_id"))
	f.DocumentID = parseID(values.Get("document_id"))

	if l := values.Get("label"); l != "" {
		f.Label = &l
	}
	if j := values.Get("judge"); j != "" {
		f.Judge = &j
	}
	if raw := values.Get("labeled"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			f.Labeled = &v
		}
	}

	return f
}

func parseID(raw string) *int64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func scanEvidence(s repository.Scanner) (Evidence, error) {
	var e Evidence
	err := s.Scan(
		&e.ID,
		&e.RelationID,
		&e.SegmentID,
		&e.LeftEOID,
		&e.RightEOID,
		&e.Label,
		&e.Judge,
		&e.ModificationDate,
		&e.DocumentID,
		&e.SegmentOffset,
		&e.LeftAlias,
		&e.RightAlias,
	)
	return e, err
}
