package routes_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/labeler/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/relations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/{relationID}/segments",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/{segmentID}", Handler: ok},
				},
			},
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/relations", http.StatusOK},
		{"find", "GET", "/relations/3", http.StatusOK},
		{"nested child", "POST", "/relations/3/segments/12", http.StatusOK},
		{"wrong method", "DELETE", "/relations/3", http.StatusMethodNotAllowed},
		{"unknown", "GET", "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGroupMiddleware(t *testing.T) {
	var trail []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mux := http.NewServeMux()
	routes.Register(mux,
		routes.Group{
			Prefix:     "/corpus",
			Middleware: []func(http.Handler) http.Handler{tag("outer")},
			Routes:     []routes.Route{{Method: "GET", Pattern: "", Handler: ok}},
			Children: []routes.Group{
				{
					Prefix:     "/relations",
					Middleware: []func(http.Handler) http.Handler{tag("inner")},
					Routes:     []routes.Route{{Method: "GET", Pattern: "/{id}", Handler: ok}},
				},
			},
		},
		routes.Group{
			Prefix: "/open",
			Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: ok}},
		},
	)

	tests := []struct {
		path string
		want string
	}{
		{"/corpus", "outer"},
		{"/corpus/relations/1", "outer,inner"},
		{"/open", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			trail = nil
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			if got := strings.Join(trail, ","); got != tt.want {
				t.Errorf("middleware trail: got %q, want %q", got, tt.want)
			}
		})
	}
}
