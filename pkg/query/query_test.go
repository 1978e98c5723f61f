package query_test

import (
	"testing"

	"github.com/JaimeStill/labeler/pkg/query"
)

func evidenceProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "labeled_relation_evidences", "e").
		Project("id", "ID").
		Project("label", "Label").
		Project("judge", "Judge").
		Join("public", "text_segments", "s", "JOIN", "s.id = e.segment_id").
		Filterable("document_id", "DocumentID").
		Project("offset_start", "SegmentOffset")
}

func ptr[T any](v T) *T { return &v }

func TestProjectionMapFrom(t *testing.T) {
	p := evidenceProjection()

	want := "public.labeled_relation_evidences e JOIN public.text_segments s ON s.id = e.segment_id"
	if got := p.From(); got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
	if got := p.Table(); got != "public.labeled_relation_evidences e" {
		t.Errorf("Table() = %q", got)
	}
	if got := p.Alias(); got != "e" {
		t.Errorf("Alias() = %q, want e", got)
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := evidenceProjection()

	want := "e.id, e.label, e.judge, s.offset_start"
	if got := p.Columns(); got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}

	tests := []struct {
		viewName string
		want     string
	}{
		{"Label", "e.label"},
		{"DocumentID", "s.document_id"},
		{"SegmentOffset", "s.offset_start"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.viewName, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		input string
		want  []query.SortField
	}{
		{"", nil},
		{"Label", []query.SortField{{Field: "Label"}}},
		{"-ModificationDate", []query.SortField{{Field: "ModificationDate", Descending: true}}},
		{"Label, -ID,", []query.SortField{{Field: "Label"}, {Field: "ID", Descending: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderConditions(t *testing.T) {
	relationID := int64(3)

	b := query.NewBuilder(evidenceProjection(), query.SortField{Field: "ID"}).
		WhereEquals("DocumentID", &relationID).
		WhereEquals("Judge", (*string)(nil)).
		WherePresent("Label", ptr(true)).
		WhereSearch(ptr("ali"), "Judge", "Label")

	sql, args := b.Build()
	want := "SELECT e.id, e.label, e.judge, s.offset_start FROM public.labeled_relation_evidences e " +
		"JOIN public.text_segments s ON s.id = e.segment_id " +
		"WHERE s.document_id = $1 AND e.label IS NOT NULL AND (e.judge::text ILIKE $2 OR e.label::text ILIKE $3) " +
		"ORDER BY e.id ASC"
	if sql != want {
		t.Errorf("Build() =\n%q\nwant\n%q", sql, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v, want 3 args", args)
	}
	if args[1] != "%ali%" {
		t.Errorf("args[1] = %v, want %%ali%%", args[1])
	}
}

func TestBuilderPageAndCount(t *testing.T) {
	b := query.NewBuilder(evidenceProjection(), query.SortField{Field: "ID"}).
		WherePresent("Label", ptr(false)).
		OrderByFields([]query.SortField{{Field: "SegmentOffset", Descending: true}})

	pageSQL, _ := b.BuildPage(3, 20)
	wantPage := "SELECT e.id, e.label, e.judge, s.offset_start FROM public.labeled_relation_evidences e " +
		"JOIN public.text_segments s ON s.id = e.segment_id WHERE e.label IS NULL " +
		"ORDER BY s.offset_start DESC LIMIT 20 OFFSET 40"
	if pageSQL != wantPage {
		t.Errorf("BuildPage() =\n%q\nwant\n%q", pageSQL, wantPage)
	}

	countSQL, countArgs := b.BuildCount()
	wantCount := "SELECT COUNT(*) FROM public.labeled_relation_evidences e " +
		"JOIN public.text_segments s ON s.id = e.segment_id WHERE e.label IS NULL"
	if countSQL != wantCount {
		t.Errorf("BuildCount() = %q, want %q", countSQL, wantCount)
	}
	if len(countArgs) != 0 {
		t.Errorf("count args = %v, want none", countArgs)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(evidenceProjection()).BuildSingle("ID", int64(9))

	want := "SELECT e.id, e.label, e.judge, s.offset_start FROM public.labeled_relation_evidences e " +
		"JOIN public.text_segments s ON s.id = e.segment_id WHERE e.id = $1"
	if sql != want {
		t.Errorf("BuildSingle() = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != int64(9) {
		t.Errorf("args = %v, want [9]", args)
	}
}
