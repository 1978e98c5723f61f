package labeling_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JaimeStill/labeler/internal/labeling"
)

func TestLabeledNeighbor(t *testing.T) {
	ids := []int64{4, 8, 15}

	tests := []struct {
		name    string
		ids     []int64
		current int64
		back    bool
		want    int64
		wantOK  bool
	}{
		{"empty", nil, 8, false, 0, false},
		{"forward", ids, 4, false, 8, true},
		{"back", ids, 15, true, 8, true},
		{"earliest going back reflects", ids, 4, true, 4, true},
		{"latest going forward reflects", ids, 15, false, 15, true},
		{"current not labeled yields last", ids, 9, true, 15, true},
		{"current not labeled forward yields last", ids, 1, false, 15, true},
		{"single", []int64{8}, 8, false, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := labeling.LabeledNeighbor(tt.ids, tt.current, tt.back)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LabeledNeighbor(%v, %d, %v) = %d, %v; want %d, %v", tt.ids, tt.current, tt.back, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func testKind(labeled []int64, known ...int64) labeling.Kind {
	return labeling.Kind{
		Name: "segment",
		Route: func(relationID, id int64) string {
			return fmt.Sprintf("/corpus/relations/%d/segments/%d", relationID, id)
		},
		Find: func(_ context.Context, id int64) error {
			for _, k := range known {
				if k == id {
					return nil
				}
			}
			return errMissing
		},
		LabeledIDs: func(context.Context, int64) ([]int64, error) {
			return labeled, nil
		},
	}
}

var errMissing = errors.New("missing")

func TestNavigate(t *testing.T) {
	tests := []struct {
		name    string
		labeled []int64
		current int64
		back    bool
		want    labeling.Move
	}{
		{
			name:    "moves forward",
			labeled: []int64{4, 8},
			current: 4,
			want:    labeling.Move{Target: 8, URL: "/corpus/relations/3/segments/8", Outcome: labeling.Moved},
		},
		{
			name:    "boundary going back",
			labeled: []int64{4, 8},
			current: 4,
			back:    true,
			want: labeling.Move{
				Target:  4,
				URL:     "/corpus/relations/3/segments/4",
				Outcome: labeling.Boundary,
				Warning: "No previous segment to show.",
			},
		},
		{
			name:    "boundary going forward",
			labeled: []int64{4, 8},
			current: 8,
			want: labeling.Move{
				Target:  8,
				URL:     "/corpus/relations/3/segments/8",
				Outcome: labeling.Boundary,
				Warning: "No next segment to show.",
			},
		},
		{
			name:    "nothing labeled",
			current: 4,
			want: labeling.Move{
				Target:  4,
				URL:     "/corpus/relations/3/segments/4",
				Outcome: labeling.Empty,
				Warning: "No other segment to show.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := labeling.Navigate(context.Background(), testKind(tt.labeled, 4, 8), 3, tt.current, tt.back)
			if err != nil {
				t.Fatalf("Navigate: %v", err)
			}
			if got != tt.want {
				t.Errorf("move = %+v, want %+v", got, tt.want)
			}
		})
	}

	t.Run("unknown current item", func(t *testing.T) {
		_, err := labeling.Navigate(context.Background(), testKind([]int64{4}, 4), 3, 99, false)
		if !errors.Is(err, errMissing) {
			t.Errorf("error = %v, want errMissing", err)
		}
	})
}
