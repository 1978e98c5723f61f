package evidences_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/pkg/pagination"
)

type mockSystem struct {
	listFn func(ctx context.Context, page pagination.PageRequest, filters evidences.Filters) (*pagination.PageResult[evidences.Evidence], error)
	findFn func(ctx context.Context, id int64) (*evidences.Evidence, error)
}

func (m *mockSystem) Handler() *evidences.Handler { return newTestHandler(m) }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters evidences.Filters) (*pagination.PageResult[evidences.Evidence], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id int64) (*evidences.Evidence, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) ForSegment(context.Context, int64, int64) ([]evidences.Evidence, error) {
	return nil, nil
}

func (m *mockSystem) ForDocument(context.Context, int64, int64) ([]evidences.Evidence, error) {
	return nil, nil
}

func (m *mockSystem) EnsureForSegment(context.Context, *relations.Relation, int64) (int64, error) {
	return 0, nil
}

func (m *mockSystem) EnsureForDocument(context.Context, *relations.Relation, int64) (int64, error) {
	return 0, nil
}

func (m *mockSystem) SaveLabels(context.Context, []evidences.Change) error { return nil }

func (m *mockSystem) EachLabeled(context.Context, int64, func(evidences.Evidence) error) error {
	return nil
}

func newTestHandler(sys evidences.System) *evidences.Handler {
	return evidences.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *evidences.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func sampleEvidence() evidences.Evidence {
	return evidences.Evidence{
		ID:               5,
		RelationID:       3,
		SegmentID:        11,
		DocumentID:       2,
		LeftEOID:         31,
		LeftAlias:        "John Smith",
		RightEOID:        32,
		RightAlias:       "Paris",
		Label:            ptr(evidences.YesRelation),
		Judge:            ptr("alice"),
		ModificationDate: time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC),
	}
}

func TestHandlerList(t *testing.T) {
	var captured evidences.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, filters evidences.Filters) (*pagination.PageResult[evidences.Evidence], error) {
			captured = filters
			result := pagination.NewPageResult([]evidences.Evidence{sampleEvidence()}, 1, 1, 20)
			return &result, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, httptest.NewRequest("GET", "/evidences?relation_id=3&labeled=false", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[evidences.Evidence]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Data) != 1 || result.Data[0].RightAlias != "Paris" {
		t.Errorf("data = %+v", result.Data)
	}
	if captured.RelationID == nil || *captured.RelationID != 3 {
		t.Errorf("relation filter = %v, want 3", captured.RelationID)
	}
	if captured.Labeled == nil || *captured.Labeled {
		t.Errorf("labeled filter = %v, want false", captured.Labeled)
	}
}

func TestHandlerLabels(t *testing.T) {
	rec := httptest.NewRecorder()
	setupMux(newTestHandler(&mockSystem{})).ServeHTTP(rec, httptest.NewRequest("GET", "/evidences/labels", nil))

	var options []evidences.Option
	if err := json.NewDecoder(rec.Body).Decode(&options); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(options) != 5 || options[0].Value != evidences.YesRelation {
		t.Errorf("options = %+v", options)
	}
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, id int64) (*evidences.Evidence, error) {
			if id != 5 {
				return nil, evidences.ErrNotFound
			}
			e := sampleEvidence()
			return &e, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/evidences/5", http.StatusOK},
		{"not found", "/evidences/6", http.StatusNotFound},
		{"invalid id", "/evidences/five", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerSearch(t *testing.T) {
	called := false
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, filters evidences.Filters) (*pagination.PageResult[evidences.Evidence], error) {
			called = true
			result := pagination.NewPageResult([]evidences.Evidence{}, 0, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("valid label", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/evidences/search", strings.NewReader(`{"label":"SKIP","relation_id":3}`)))
		if rec.Code != http.StatusOK || !called {
			t.Errorf("status = %d, called = %v", rec.Code, called)
		}
	})

	t.Run("invalid label", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/evidences/search", strings.NewReader(`{"label":"MAYBE"}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
