// Package evidences implements labeled relation evidence: candidate pairs of entity
// occurrences inside a segment, their human judgments, and the queries that feed the
// labeling forms and dataset exports.
package evidences

import "time"

// Label values. A nil label marks a pending evidence.
const (
	YesRelation = "YESRELATION"
	NoRelation  = "NORELATION"
	DontKnow    = "DONTKNOW"
	Skip        = "SKIP"
	Nonsense    = "NONSENSE"
)

// Option is a selectable label with its human-readable description.
type Option struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Options lists the labels in form display order.
var Options = []Option{
	{YesRelation, "Yes, relation is present"},
	{NoRelation, "No relation present"},
	{Nonsense, "Evidence is nonsense"},
	{Skip, "Skipped labeling of this evidence"},
	{DontKnow, "Unknown"},
}

// ValidLabel reports whether value is one of the defined labels.
func ValidLabel(value string) bool {
	for _, o := range Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Evidence is a candidate relation instance between two occurrences of a segment.
type Evidence struct {
	ID               int64     `json:"id"`
	RelationID       int64     `json:"relation_id"`
	SegmentID        int64     `json:"segment_id"`
	DocumentID       int64     `json:"document_id"`
	SegmentOffset    int       `json:"segment_offset"`
	LeftEOID         int64     `json:"left_entity_occurrence_id"`
	LeftAlias        string    `json:"left_alias"`
	RightEOID        int64     `json:"right_entity_occurrence_id"`
	RightAlias       string    `json:"right_alias"`
	Label            *string   `json:"label"`
	Judge            *string   `json:"judge"`
	ModificationDate time.Time `json:"modification_date"`
}

// LabelValue returns the label, or "" when pending.
func (e Evidence) LabelValue() string {
	if e.Label == nil {
		return ""
	}
	return *e.Label
}

// Change is a label edit for a single evidence, stamped with the judge who made it.
type Change struct {
	ID    int64
	Label *string
	Judge string
}
