package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/JaimeStill/labeler/pkg/pagination"
)

var cfg = pagination.Config{DefaultPageSize: 25, MaxPageSize: 200}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var c pagination.Config
		if err := c.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if c.DefaultPageSize != 25 || c.MaxPageSize != 200 {
			t.Errorf("got %+v, want 25/200", c)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PAGINATION_DEFAULT_PAGE_SIZE", "10")
		t.Setenv("TEST_PAGINATION_MAX_PAGE_SIZE", "40")

		var c pagination.Config
		if err := c.Finalize(pagination.NewConfigEnv("TEST_PAGINATION")); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if c.DefaultPageSize != 10 || c.MaxPageSize != 40 {
			t.Errorf("got %+v, want 10/40", c)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		c := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
		if err := c.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantSearch   string
		wantSort     int
	}{
		{"empty", "", 1, 25, "", 0},
		{"explicit", "page=3&page_size=10", 3, 10, "", 0},
		{"clamped", "page=-1&page_size=1000", 1, 200, "", 0},
		{"search and sort", "search=alice&sort=Label,-ID", 1, 25, "alice", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantPageSize {
				t.Errorf("page_size = %d, want %d", req.PageSize, tt.wantPageSize)
			}
			if tt.wantSearch == "" && req.Search != nil {
				t.Errorf("search = %q, want nil", *req.Search)
			}
			if tt.wantSearch != "" && (req.Search == nil || *req.Search != tt.wantSearch) {
				t.Errorf("search = %v, want %q", req.Search, tt.wantSearch)
			}
			if len(req.Sort) != tt.wantSort {
				t.Errorf("sort = %v, want %d fields", req.Sort, tt.wantSort)
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		var req pagination.PageRequest
		if err := json.Unmarshal([]byte(`{"sort":"Label,-ID"}`), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(req.Sort) != 2 || !req.Sort[1].Descending {
			t.Errorf("sort = %+v", req.Sort)
		}
	})

	t.Run("array form", func(t *testing.T) {
		var req pagination.PageRequest
		data := `{"sort":[{"field":"Judge","descending":true}]}`
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(req.Sort) != 1 || req.Sort[0].Field != "Judge" || !req.Sort[0].Descending {
			t.Errorf("sort = %+v", req.Sort)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int
	}{
		{"empty", 0, 25, 1},
		{"exact", 50, 25, 2},
		{"remainder", 51, 25, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult[int](nil, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantPages {
				t.Errorf("total_pages = %d, want %d", result.TotalPages, tt.wantPages)
			}
			if result.Data == nil {
				t.Error("data should be non-nil")
			}
		})
	}
}
