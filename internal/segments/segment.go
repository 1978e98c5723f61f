// Package segments implements text segments and their entity occurrences, including
// hydration of a segment's tokens and the per-token occurrence overlay used for display.
package segments

import "strings"

// Segment is a token span [Offset, OffsetEnd) inside a document.
type Segment struct {
	ID         int64 `json:"id"`
	DocumentID int64 `json:"document_id"`
	Offset     int   `json:"offset"`
	OffsetEnd  int   `json:"offset_end"`
}

// Contains reports whether the occurrence lies entirely within the segment.
func (s Segment) Contains(eo EntityOccurrence) bool {
	return eo.DocumentID == s.DocumentID && eo.Offset >= s.Offset && eo.OffsetEnd <= s.OffsetEnd
}

// EntityOccurrence is a located mention of an entity. Offsets are absolute document token offsets.
type EntityOccurrence struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	EntityKey  string `json:"entity_key"`
	EntityKind string `json:"entity_kind"`
	Offset     int    `json:"offset"`
	OffsetEnd  int    `json:"offset_end"`
	Alias      string `json:"alias"`
}

// Hydrated is a segment with its tokens and the occurrences inside its span loaded.
type Hydrated struct {
	Segment
	Tokens      []string           `json:"tokens"`
	Occurrences []EntityOccurrence `json:"occurrences"`
}

// RichToken is a display token overlaid with the occurrences covering it.
type RichToken struct {
	Token   string   `json:"token"`
	Offset  int      `json:"offset"`
	EOIDs   []int64  `json:"eo_ids"`
	EOKinds []string `json:"eo_kinds"`
}

var bracketTokens = strings.NewReplacer("-LRB-", "(", "-RRB-", ")")

// RichTokens pairs every token of the segment with the occurrences covering its offset.
// Parser bracket escapes are rendered as literal parentheses.
func (h Hydrated) RichTokens() []RichToken {
	out := make([]RichToken, 0, len(h.Tokens))
	for i, tkn := range h.Tokens {
		offset := h.Offset + i
		rt := RichToken{
			Token:   bracketTokens.Replace(tkn),
			Offset:  offset,
			EOIDs:   []int64{},
			EOKinds: []string{},
		}
		for _, eo := range h.Occurrences {
			if eo.Offset <= offset && offset < eo.OffsetEnd {
				rt.EOIDs = append(rt.EOIDs, eo.ID)
				rt.EOKinds = append(rt.EOKinds, eo.EntityKind)
			}
		}
		out = append(out, rt)
	}
	return out
}
