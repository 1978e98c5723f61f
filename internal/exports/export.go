// Package exports writes a relation's labeled evidence to blob storage as JSON Lines,
// one record per evidence, for training and auditing downstream.
package exports

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
)

// ContentType is the media type of export blobs.
const ContentType = "application/x-ndjson"

// Export describes one written export blob.
type Export struct {
	ID         uuid.UUID `json:"id"`
	RelationID int64     `json:"relation_id"`
	Relation   string    `json:"relation"`
	Key        string    `json:"key"`
	Records    int       `json:"records"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record is one line of an export.
type Record struct {
	Relation         string    `json:"relation"`
	RelationID       int64     `json:"relation_id"`
	EvidenceID       int64     `json:"evidence_id"`
	DocumentID       int64     `json:"document_id"`
	SegmentID        int64     `json:"segment_id"`
	LeftEOID         int64     `json:"left_entity_occurrence_id"`
	LeftAlias        string    `json:"left_alias"`
	RightEOID        int64     `json:"right_entity_occurrence_id"`
	RightAlias       string    `json:"right_alias"`
	Label            string    `json:"label"`
	Judge            string    `json:"judge,omitempty"`
	ModificationDate time.Time `json:"modification_date"`
}

// NewRecord flattens a labeled evidence of rel into an export record.
func NewRecord(rel *relations.Relation, e evidences.Evidence) Record {
	r := Record{
		Relation:         rel.Name,
		RelationID:       rel.ID,
		EvidenceID:       e.ID,
		DocumentID:       e.DocumentID,
		SegmentID:        e.SegmentID,
		LeftEOID:         e.LeftEOID,
		LeftAlias:        e.LeftAlias,
		RightEOID:        e.RightEOID,
		RightAlias:       e.RightAlias,
		Label:            e.LabelValue(),
		ModificationDate: e.ModificationDate,
	}
	if e.Judge != nil {
		r.Judge = *e.Judge
	}
	return r
}

// Key returns the blob key of an export.
func Key(relationID int64, id uuid.UUID) string {
	return fmt.Sprintf("exports/relation-%d/%s.jsonl", relationID, id)
}
