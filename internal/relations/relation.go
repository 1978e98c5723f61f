// Package relations implements the relation domain: named predicates between two
// entity kinds, and the corpus queries that decide what a labeler sees next.
package relations

// Relation is a predicate labeled over pairs of entity occurrences of the given kinds.
type Relation struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	LeftEntityKindID  int64  `json:"left_entity_kind_id"`
	LeftEntityKind    string `json:"left_entity_kind"`
	RightEntityKindID int64  `json:"right_entity_kind_id"`
	RightEntityKind   string `json:"right_entity_kind"`
}

// String renders the relation as shown in page titles.
func (r Relation) String() string {
	return r.Name + " (" + r.LeftEntityKind + ", " + r.RightEntityKind + ")"
}

// Progress counts a relation's evidences by state.
type Progress struct {
	RelationID int64 `json:"relation_id"`
	Total      int   `json:"total"`
	Labeled    int   `json:"labeled"`
	Pending    int   `json:"pending"`
	Skipped    int   `json:"skipped"`
}
