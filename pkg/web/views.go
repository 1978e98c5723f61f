// Package web provides infrastructure for serving server-rendered pages with Go templates
// and embedded static assets.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

// ViewDef defines a page by its template file and default title.
type ViewDef struct {
	Template string
	Title    string
}

// Message is a transient notification shown at the top of a page.
type Message struct {
	Level string
	Text  string
}

// ViewData contains the data passed to page templates during rendering.
// BasePath enables portable URL generation in templates via {{ .BasePath }} and the path func.
type ViewData struct {
	Title    string
	Subtitle string
	BasePath string
	User     string
	Messages []Message
	Data     any
}

// TemplateSet holds pre-parsed templates and a base path for URL generation.
// Templates are parsed once at startup.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
}

// NewTemplateSet parses the layout templates and clones them for each view.
// Every template can call {{ path "relations" .ID }} to build a URL under basePath.
func NewTemplateSet(fsys fs.FS, layoutGlob, viewSubdir, basePath string, views []ViewDef) (*TemplateSet, error) {
	funcs := template.FuncMap{
		"path": func(parts ...any) string { return JoinPath(basePath, parts...) },
	}

	layouts, err := template.New("").Funcs(funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, err
	}

	viewSub, err := fs.Sub(fsys, viewSubdir)
	if err != nil {
		return nil, err
	}

	viewTemplates := make(map[string]*template.Template, len(views))
	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(viewSub, v.Template); err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", v.Template, err)
		}
		viewTemplates[v.Template] = t
	}

	return &TemplateSet{
		views:    viewTemplates,
		basePath: basePath,
	}, nil
}

// BasePath returns the prefix used for generated URLs.
func (ts *TemplateSet) BasePath() string {
	return ts.basePath
}

// ErrorHandler returns an HTTP handler that renders an error page with the given status code.
func (ts *TemplateSet) ErrorHandler(layout string, view ViewDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ViewData{Title: view.Title, Data: http.StatusText(status)}
		if err := ts.Render(w, status, layout, view.Template, data); err != nil {
			http.Error(w, http.StatusText(status), status)
		}
	}
}

// Render executes the named layout template for viewPath and writes it with status.
// The template is executed into a buffer first so a failing template never produces a partial page.
func (ts *TemplateSet) Render(w http.ResponseWriter, status int, layoutName, viewPath string, data ViewData) error {
	t, ok := ts.views[viewPath]
	if !ok {
		return fmt.Errorf("template not found: %s", viewPath)
	}

	data.BasePath = ts.basePath

	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, layoutName, data); err != nil {
		return fmt.Errorf("execute %s: %w", viewPath, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(buf.String()))
	return err
}

// JoinPath joins basePath with the given segments using "/".
func JoinPath(basePath string, parts ...any) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(basePath, "/"))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(strings.Trim(fmt.Sprint(p), "/"))
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
