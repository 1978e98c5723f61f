package documents

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/labeler/pkg/query"
	"github.com/JaimeStill/labeler/pkg/repository"
)

func newProjection() *query.ProjectionMap {
	return query.
		NewProjectionMap("public", "documents", "d").
		Project("id", "ID").
		Project("human_identifier", "HumanIdentifier").
		Project("title", "Title").
		Project("created_at", "CreatedAt")
}

var projection = newProjection()

var detailProjection = newProjection().Project("tokens", "Tokens")

var defaultSort = query.SortField{Field: "ID"}

// Filters contains optional filtering criteria for document queries.
// Both fields use case-insensitive contains matching.
type Filters struct {
	HumanIdentifier *string `json:"human_identifier,omitempty"`
	Title           *string `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("HumanIdentifier", f.HumanIdentifier).
		WhereContains("Title", f.Title)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if hi := values.Get("human_identifier"); hi != "" {
		f.HumanIdentifier = &hi
	}
	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(&d.ID, &d.HumanIdentifier, &d.Title, &d.CreatedAt)
	return d, err
}

func scanDocumentDetail(s repository.Scanner) (Document, error) {
	var (
		d   Document
		raw []byte
	)
	if err := s.Scan(&d.ID, &d.HumanIdentifier, &d.Title, &d.CreatedAt, &raw); err != nil {
		return d, err
	}

	tokens, err := DecodeTokens(raw)
	if err != nil {
		return d, err
	}
	d.Tokens = tokens
	return d, nil
}

// DecodeTokens parses the stored JSON token array. An empty value decodes to no tokens.
func DecodeTokens(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}

	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokens, err)
	}
	if tokens == nil {
		tokens = []string{}
	}
	return tokens, nil
}
