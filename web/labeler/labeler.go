// Package labeler embeds the labeling page templates and static assets.
package labeler

import (
	"embed"
	"net/http"

	"github.com/JaimeStill/labeler/pkg/web"
)

//go:embed templates static
var files embed.FS

// Views lists the labeling pages.
var Views = []web.ViewDef{
	{Template: "relations.html", Title: "Relations"},
	{Template: "segment.html", Title: "Label segment"},
	{Template: "document.html", Title: "Label document"},
	{Template: "message.html", Title: "Labeler"},
	{Template: "error.html", Title: "Error"},
}

// Templates parses the labeling pages with links rooted at basePath.
func Templates(basePath string) (*web.TemplateSet, error) {
	return web.NewTemplateSet(files, "templates/layouts/*.html", "templates/views", basePath, Views)
}

// Static serves the embedded assets under urlPrefix.
func Static(urlPrefix string) http.HandlerFunc {
	return web.StaticServer(files, "static", urlPrefix)
}
