package labeling_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/labeling"
)

func strPtr(s string) *string { return &s }

func formEvidences() []evidences.Evidence {
	return []evidences.Evidence{
		{ID: 5, RelationID: 3, SegmentID: 10, Label: strPtr(evidences.YesRelation), Judge: strPtr("alice")},
		{ID: 9, RelationID: 3, SegmentID: 11},
	}
}

func TestNewForm(t *testing.T) {
	form := labeling.NewForm(formEvidences())

	if form.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", form.Total())
	}
	if form.TotalKey() != "form-TOTAL_FORMS" || form.InitialKey() != "form-INITIAL_FORMS" {
		t.Errorf("management keys = %s, %s", form.TotalKey(), form.InitialKey())
	}

	tests := []struct {
		idKey    string
		labelKey string
		label    string
	}{
		{"form-0-id", "form-0-label", evidences.YesRelation},
		{"form-1-id", "form-1-label", ""},
	}

	for i, tt := range tests {
		row := form.Rows[i]
		if row.IDKey() != tt.idKey || row.LabelKey() != tt.labelKey || row.Label != tt.label {
			t.Errorf("row %d = %s/%s/%q, want %s/%s/%q", i, row.IDKey(), row.LabelKey(), row.Label, tt.idKey, tt.labelKey, tt.label)
		}
	}
}

func TestBind(t *testing.T) {
	tests := []struct {
		name        string
		data        url.Values
		binding     labeling.Binding
		wantErrors  bool
		wantChanges map[int64]*string
	}{
		{
			name: "unchanged rows produce no changes",
			data: url.Values{
				"form-TOTAL_FORMS": {"2"}, "form-INITIAL_FORMS": {"2"},
				"form-0-id": {"5"}, "form-0-label": {"YESRELATION"},
				"form-1-id": {"9"}, "form-1-label": {""},
			},
			binding:     labeling.Binding{Judge: "bob"},
			wantChanges: map[int64]*string{},
		},
		{
			name: "changed label",
			data: url.Values{
				"form-TOTAL_FORMS": {"2"}, "form-INITIAL_FORMS": {"2"},
				"form-0-id": {"5"}, "form-0-label": {"NORELATION"},
				"form-1-id": {"9"}, "form-1-label": {"SKIP"},
			},
			binding: labeling.Binding{Judge: "bob"},
			wantChanges: map[int64]*string{
				5: strPtr(evidences.NoRelation),
				9: strPtr(evidences.Skip),
			},
		},
		{
			name: "default label fills unset rows",
			data: url.Values{
				"form-TOTAL_FORMS": {"2"}, "form-INITIAL_FORMS": {"2"},
				"form-0-id": {"5"}, "form-0-label": {"YESRELATION"},
				"form-1-id": {"9"}, "form-1-label": {""},
			},
			binding:     labeling.Binding{Judge: "bob", DefaultLabel: evidences.NoRelation},
			wantChanges: map[int64]*string{9: strPtr(evidences.NoRelation)},
		},
		{
			name: "clearing a label",
			data: url.Values{
				"form-TOTAL_FORMS": {"1"}, "form-INITIAL_FORMS": {"1"},
				"form-0-id": {"5"}, "form-0-label": {""},
			},
			binding:     labeling.Binding{Judge: "bob"},
			wantChanges: map[int64]*string{5: nil},
		},
		{
			name: "unknown evidence",
			data: url.Values{
				"form-TOTAL_FORMS": {"1"}, "form-INITIAL_FORMS": {"1"},
				"form-0-id": {"7"}, "form-0-label": {"NORELATION"},
			},
			wantErrors: true,
		},
		{
			name: "duplicate evidence",
			data: url.Values{
				"form-TOTAL_FORMS": {"2"}, "form-INITIAL_FORMS": {"2"},
				"form-0-id": {"9"}, "form-0-label": {"NORELATION"},
				"form-1-id": {"9"}, "form-1-label": {"SKIP"},
			},
			wantErrors: true,
		},
		{
			name: "invalid label",
			data: url.Values{
				"form-TOTAL_FORMS": {"1"}, "form-INITIAL_FORMS": {"1"},
				"form-0-id": {"9"}, "form-0-label": {"MAYBE"},
			},
			wantErrors: true,
		},
		{
			name: "invalid default label",
			data: url.Values{
				"form-TOTAL_FORMS": {"1"}, "form-INITIAL_FORMS": {"1"},
				"form-0-id": {"9"}, "form-0-label": {""},
			},
			binding:    labeling.Binding{DefaultLabel: "MAYBE"},
			wantErrors: true,
		},
		{
			name:       "missing management data",
			data:       url.Values{"form-0-id": {"9"}},
			wantErrors: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, changes := labeling.Bind(tt.data, formEvidences(), tt.binding)

			if tt.wantErrors {
				if len(form.Errors) == 0 {
					t.Error("expected form errors")
				}
				if changes != nil {
					t.Errorf("changes = %v, want none on error", changes)
				}
				return
			}

			if len(form.Errors) > 0 {
				t.Fatalf("unexpected errors: %v", form.Errors)
			}
			if len(changes) != len(tt.wantChanges) {
				t.Fatalf("changes = %+v, want %d", changes, len(tt.wantChanges))
			}
			for _, c := range changes {
				want, ok := tt.wantChanges[c.ID]
				if !ok {
					t.Errorf("unexpected change for %d", c.ID)
					continue
				}
				if (want == nil) != (c.Label == nil) || (want != nil && *want != *c.Label) {
					t.Errorf("change %d label = %v, want %v", c.ID, c.Label, want)
				}
				if c.Judge != tt.binding.Judge {
					t.Errorf("change %d judge = %q, want %q", c.ID, c.Judge, tt.binding.Judge)
				}
			}
		})
	}
}

func TestBindRenumbersRows(t *testing.T) {
	data := url.Values{
		"form-TOTAL_FORMS": {"2"}, "form-INITIAL_FORMS": {"2"},
		"form-0-id": {"9"}, "form-0-label": {"DONTKNOW"},
		"form-1-id": {"5"}, "form-1-label": {"YESRELATION"},
	}

	form, _ := labeling.Bind(data, formEvidences(), labeling.Binding{Judge: "bob"})

	if form.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", form.Total())
	}
	if form.Rows[0].Evidence.ID != 9 || form.Rows[0].Prefix != "form-0" || form.Rows[0].Label != evidences.DontKnow {
		t.Errorf("row 0 = %+v", form.Rows[0])
	}
	if form.Rows[1].Evidence.ID != 5 || form.Rows[1].Prefix != "form-1" {
		t.Errorf("row 1 = %+v", form.Rows[1])
	}
}
