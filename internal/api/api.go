// Package api assembles the JSON API module with the corpus domain systems,
// dataset exports, and export blob browsing.
package api

import (
	"net/http"

	"github.com/JaimeStill/labeler/internal/config"
	"github.com/JaimeStill/labeler/pkg/middleware"
	"github.com/JaimeStill/labeler/pkg/module"
)

// NewModule creates the API module over domain with its CORS, logging, and metrics middleware.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) *module.Module {
	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.HTTP.Middleware(m.Name()))

	return m
}
