// Package corpus assembles the labeling UI module: the server-rendered pages judges use
// to label relation evidence, behind sessions and authentication.
package corpus

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/labeler/internal/config"
	"github.com/JaimeStill/labeler/internal/infrastructure"
	"github.com/JaimeStill/labeler/internal/labeling"
	"github.com/JaimeStill/labeler/pkg/middleware"
	"github.com/JaimeStill/labeler/pkg/module"
	"github.com/JaimeStill/labeler/pkg/routes"
	"github.com/JaimeStill/labeler/pkg/web"
	"github.com/JaimeStill/labeler/web/labeler"
)

// NewModule creates the labeling UI module. Pages redirect to loginPath when the
// request carries no identity.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure, domain labeling.Domain, loginPath string) (*module.Module, error) {
	logger := infra.Logger.With("module", "corpus")

	views, err := labeler.Templates(cfg.Corpus.BasePath)
	if err != nil {
		return nil, fmt.Errorf("parse labeling templates: %w", err)
	}

	handler := labeling.NewHandler(
		domain,
		views,
		labeling.NewMetrics(infra.Metrics, infrastructure.MetricsNamespace),
		logger,
		labeling.Options{
			Location:    cfg.Corpus.Location(),
			MaxFormSize: cfg.Corpus.MaxFormSizeBytes(),
		},
	)

	pages := handler.Routes()
	pages.Middleware = []func(http.Handler) http.Handler{
		infra.Sessions.Middleware(),
		infra.Auth.Require(loginPath, cfg.Corpus.BasePath),
	}

	router := web.NewRouter()
	router.HandleFunc("GET /static/", labeler.Static("/static/"))
	router.SetFallback(views.ErrorHandler(
		labeling.Layout,
		web.ViewDef{Template: labeling.ErrorTpl, Title: "Not Found"},
		http.StatusNotFound,
	))
	routes.Register(router.Mux(), pages)

	m := module.New(cfg.Corpus.BasePath, router)
	m.Use(middleware.Logger(logger))
	m.Use(infra.HTTP.Middleware(m.Name()))

	return m, nil
}
