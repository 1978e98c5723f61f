package relations

import (
	"net/url"

	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "relations", "r").
	Project("id", "ID").
	Project("name", "Name").
	Project("left_entity_kind_id", "LeftEntityKindID").
	Project("right_entity_kind_id", "RightEntityKindID").
	Join("public", "entity_kinds", "lk", "JOIN", "lk.id = r.left_entity_kind_id").
	Project("name", "LeftEntityKind").
	Join("public", "entity_kinds", "rk", "JOIN", "rk.id = r.right_entity_kind_id").
	Project("name", "RightEntityKind")

var defaultSort = query.SortField{Field: "Name"}

// Filters contains optional filtering criteria for relation queries.
// Name uses case-insensitive contains matching; entity kinds match exactly.
type Filters struct {
	Name            *string `json:"name,omitempty"`
	LeftEntityKind  *string `json:"left_entity_kind,omitempty"`
	RightEntityKind *string `json:"right_entity_kind,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("LeftEntityKind", f.LeftEntityKind).
		WhereEquals("RightEntityKind", f.RightEntityKind)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if lk := values.Get("left_entity_kind"); lk != "" {
		f.LeftEntityKind = &lk
	}
	if rk := values.Get("right_entity_kind"); rk != "" {
		f.RightEntityKind = &rk
	}

	return f
}

func scanRelation(s repository.Scanner) (Relation, error) {
	var r Relation
	err := s.Scan(
		&r.ID,
		&r.Name,
		&r.LeftEntityKindID,
		&r.RightEntityKindID,
		&r.LeftEntityKind,
		&r.RightEntityKind,
	)
	return r, err
}

func scanProgress(s repository.Scanner) (Progress, error) {
	var p Progress
	err := s.Scan(&p.RelationID, &p.Total, &p.Labeled, &p.Pending, &p.Skipped)
	return p, err
}
