// Package documents implements the document domain: pre-tokenized text sources
// whose segments and entity occurrences are produced upstream and labeled here.
package documents

import "time"

// Document is a tokenized text source. Tokens is populated by Find only.
type Document struct {
	ID              int64     `json:"id"`
	HumanIdentifier string    `json:"human_identifier"`
	Title           string    `json:"title"`
	Tokens          []string  `json:"tokens,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Slice returns tokens[start:end] clamped to the document bounds.
func (d Document) Slice(start, end int) []string {
	start = min(max(start, 0), len(d.Tokens))
	end = min(max(end, start), len(d.Tokens))
	return d.Tokens[start:end]
}
