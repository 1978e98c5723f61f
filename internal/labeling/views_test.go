package labeling_test

import (
	"encoding/json"
	"html/template"
	"testing"
	"time"

	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/labeling"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/internal/segments"
)

var (
	bornIn = relations.Relation{
		ID: 3, Name: "born_in",
		LeftEntityKindID: 1, LeftEntityKind: "person",
		RightEntityKindID: 2, RightEntityKind: "location",
	}
	modified = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
)

func TestTitle(t *testing.T) {
	want := "Labeling Evidence for Relation born_in (person, location)"
	if got := labeling.Title(&bornIn); got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name string
		ev   evidences.Evidence
		want string
	}{
		{
			name: "labeled",
			ev:   evidences.Evidence{Label: strPtr("YESRELATION"), Judge: strPtr("alice"), ModificationDate: modified},
			want: "Labeled as YESRELATION by alice on 03/09/2024 2:05 PM",
		},
		{
			name: "no judge",
			ev:   evidences.Evidence{Label: strPtr("SKIP"), ModificationDate: modified},
			want: "Labeled as SKIP by unknown on 03/09/2024 2:05 PM",
		},
		{
			name: "empty judge",
			ev:   evidences.Evidence{Label: strPtr("SKIP"), Judge: strPtr(""), ModificationDate: modified},
			want: "Labeled as SKIP by unknown on 03/09/2024 2:05 PM",
		},
		{
			name: "unlabeled",
			ev:   evidences.Evidence{ModificationDate: modified},
			want: "Labeled as None by unknown on 03/09/2024 2:05 PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := labeling.Info(tt.ev, time.UTC); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func viewDocument() *documents.Document {
	return &documents.Document{
		ID:              2,
		HumanIdentifier: "doc-2",
		Tokens:          []string{"John", "Smith", "was", "born", "in", "Paris", "."},
	}
}

func viewSegment() segments.Hydrated {
	return segments.Hydrated{
		Segment: segments.Segment{ID: 10, DocumentID: 2, Offset: 0, OffsetEnd: 7},
		Tokens:  []string{"John", "Smith", "was", "born", "in", "Paris", "."},
		Occurrences: []segments.EntityOccurrence{
			{ID: 31, DocumentID: 2, EntityKind: "person", Offset: 0, OffsetEnd: 2, Alias: "John Smith"},
			{ID: 32, DocumentID: 2, EntityKind: "location", Offset: 5, OffsetEnd: 6, Alias: "Paris"},
		},
	}
}

func TestSegmentContext(t *testing.T) {
	seg := viewSegment()
	form := labeling.NewForm(nil)

	ctx := labeling.SegmentContext(&bornIn, viewDocument(), &seg, form)

	if got := ctx["subtitle"]; got != `For Document "doc-2", Text Segment id 10` {
		t.Errorf("subtitle = %v", got)
	}
	tokens, ok := ctx["segment_rich_tokens"].([]segments.RichToken)
	if !ok || len(tokens) != 7 {
		t.Fatalf("segment_rich_tokens = %v", ctx["segment_rich_tokens"])
	}
	if len(tokens[1].EOIDs) != 1 || tokens[1].EOIDs[0] != 31 {
		t.Errorf("token 1 occurrences = %v, want [31]", tokens[1].EOIDs)
	}
	for _, key := range []string{"title", "segment", "relation", "formset"} {
		if _, ok := ctx[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestDocumentContextWithoutEvidence(t *testing.T) {
	ctx, err := labeling.DocumentContext(&bornIn, viewDocument(), nil, labeling.NewForm(nil), time.UTC)
	if err != nil {
		t.Fatalf("DocumentContext: %v", err)
	}

	if len(ctx) != 3 {
		t.Errorf("keys = %d, want exactly title, document, relation: %v", len(ctx), ctx)
	}
	for _, key := range []string{"title", "document", "relation"} {
		if _, ok := ctx[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestDocumentContext(t *testing.T) {
	evs := []evidences.Evidence{
		{ID: 5, LeftEOID: 31, RightEOID: 32, Label: strPtr("YESRELATION"), Judge: strPtr("alice"), ModificationDate: modified},
		{ID: 9, LeftEOID: 31, RightEOID: 34, ModificationDate: modified},
	}

	ctx, err := labeling.DocumentContext(&bornIn, viewDocument(), []segments.Hydrated{viewSegment()}, labeling.NewForm(evs), time.UTC)
	if err != nil {
		t.Fatalf("DocumentContext: %v", err)
	}

	if ctx["subtitle"] != `For Document "doc-2"` {
		t.Errorf("subtitle = %v", ctx["subtitle"])
	}
	if ctx["initial_tool"] != evidences.YesRelation {
		t.Errorf("initial_tool = %v", ctx["initial_tool"])
	}

	t.Run("eos properties", func(t *testing.T) {
		var eos map[string]labeling.EOProperties
		decode(t, ctx["eos_properties"], &eos)
		if len(eos) != 3 {
			t.Errorf("eos = %v, want 3 occurrences", eos)
		}
		for id, p := range eos {
			if !p.Selectable || p.Selected {
				t.Errorf("eo %s = %+v, want selectable and unselected", id, p)
			}
		}
	})

	t.Run("relations list", func(t *testing.T) {
		var list []labeling.RelationInstance
		decode(t, ctx["relations_list"], &list)
		if len(list) != 2 {
			t.Fatalf("relations_list = %v", list)
		}
		if list[0].Relation != [2]int64{31, 32} || list[0].FormID != "form-0" {
			t.Errorf("instance 0 = %+v", list[0])
		}
		if list[1].Info != "Labeled as None by unknown on 03/09/2024 2:05 PM" {
			t.Errorf("instance 1 info = %q", list[1].Info)
		}
	})

	t.Run("forms values", func(t *testing.T) {
		var values map[string]*string
		decode(t, ctx["forms_values"], &values)
		if v := values["form-0"]; v == nil || *v != "YESRELATION" {
			t.Errorf("form-0 = %v", v)
		}
		if v, ok := values["form-1"]; !ok || v != nil {
			t.Errorf("form-1 = %v, %v; want present and null", v, ok)
		}
	})

	t.Run("question options", func(t *testing.T) {
		options, ok := ctx["question_options"].([]string)
		if !ok || len(options) != len(evidences.Options) || options[0] != evidences.YesRelation {
			t.Errorf("question_options = %v", ctx["question_options"])
		}
	})
}

func decode(t *testing.T, v any, dst any) {
	t.Helper()
	js, ok := v.(template.JS)
	if !ok {
		t.Fatalf("payload is %T, want template.JS", v)
	}
	if err := json.Unmarshal([]byte(js), dst); err != nil {
		t.Fatalf("decode %q: %v", js, err)
	}
}
