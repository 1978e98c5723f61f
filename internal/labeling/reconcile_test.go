package labeling_test

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/JaimeStill/labeler/internal/labeling"
)

func partialSubmission() url.Values {
	return url.Values{
		"form-TOTAL_FORMS":   {"3"},
		"form-INITIAL_FORMS": {"3"},
		"form-0-id":          {"5"},
		"form-0-label":       {"YESRELATION"},
		"form-1-id":          {"7"},
		"form-1-label":       {"NORELATION"},
		"form-2-id":          {"9"},
		"form-2-label":       {""},
		"partial_save":       {"enabled"},
		"csrf":               {"token"},
	}
}

func TestReconcileScenario(t *testing.T) {
	got := labeling.Reconcile(partialSubmission(), []string{"5", "9"})

	want := map[string]string{
		"form-TOTAL_FORMS":   "2",
		"form-INITIAL_FORMS": "2",
		"form-0-id":          "5",
		"form-0-label":       "YESRELATION",
		"form-1-id":          "9",
		"form-1-label":       "",
		"partial_save":       "enabled",
		"csrf":               "token",
	}

	if len(got) != len(want) {
		t.Errorf("keys = %d, want %d: %v", len(got), len(want), got)
	}
	for key, value := range want {
		if _, ok := got[key]; !ok {
			t.Errorf("missing %s", key)
			continue
		}
		if got.Get(key) != value {
			t.Errorf("%s = %q, want %q", key, got.Get(key), value)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	authoritative := []string{"5", "9"}

	once := labeling.Reconcile(partialSubmission(), authoritative)
	twice := labeling.Reconcile(once, authoritative)

	if once.Encode() != twice.Encode() {
		t.Errorf("second pass changed the result:\n once: %s\ntwice: %s", once.Encode(), twice.Encode())
	}
}

func TestReconcileCountsMatchKeptRows(t *testing.T) {
	tests := []struct {
		name          string
		authoritative []string
		wantIDs       []string
		wantLabels    []string
	}{
		{"keep all", []string{"5", "7", "9"}, []string{"5", "7", "9"}, []string{"YESRELATION", "NORELATION", ""}},
		{"keep middle", []string{"7"}, []string{"7"}, []string{"NORELATION"}},
		{"keep none", nil, nil, nil},
		{"unknown ids only", []string{"100"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labeling.Reconcile(partialSubmission(), tt.authoritative)

			n := len(tt.wantIDs)
			if got.Get("form-TOTAL_FORMS") != itoa(n) || got.Get("form-INITIAL_FORMS") != itoa(n) {
				t.Errorf("counts = %s/%s, want %d", got.Get("form-TOTAL_FORMS"), got.Get("form-INITIAL_FORMS"), n)
			}
			for i, id := range tt.wantIDs {
				if got.Get("form-"+itoa(i)+"-id") != id {
					t.Errorf("row %d id = %q, want %q", i, got.Get("form-"+itoa(i)+"-id"), id)
				}
				if got.Get("form-"+itoa(i)+"-label") != tt.wantLabels[i] {
					t.Errorf("row %d label = %q, want %q", i, got.Get("form-"+itoa(i)+"-label"), tt.wantLabels[i])
				}
			}
			if got.Has("form-" + itoa(n) + "-id") {
				t.Errorf("unexpected row %d left in %v", n, got)
			}
		})
	}
}

func TestReconcilePassThrough(t *testing.T) {
	t.Run("not partial", func(t *testing.T) {
		data := partialSubmission()
		data.Set("partial_save", "")
		got := labeling.Reconcile(data, []string{"5"})
		if got.Get("form-TOTAL_FORMS") != "3" || got.Get("form-1-id") != "7" {
			t.Errorf("full submission was modified: %v", got)
		}
	})

	t.Run("unreadable management data", func(t *testing.T) {
		data := partialSubmission()
		data.Del("form-TOTAL_FORMS")
		got := labeling.Reconcile(data, []string{"5"})
		if got.Get("form-1-id") != "7" {
			t.Errorf("malformed submission was modified: %v", got)
		}
	})
}

func TestIsPartialSave(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"enabled", true},
		{"", false},
		{"disabled", false},
		{"Enabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := labeling.IsPartialSave(url.Values{"partial_save": {tt.value}}); got != tt.want {
				t.Errorf("IsPartialSave(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func itoa(i int) string { return strconv.Itoa(i) }
