package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/labeler/internal/api"
	"github.com/JaimeStill/labeler/internal/config"
	"github.com/JaimeStill/labeler/internal/corpus"
	"github.com/JaimeStill/labeler/internal/infrastructure"
	"github.com/JaimeStill/labeler/internal/labeling"
	"github.com/JaimeStill/labeler/pkg/middleware"
	"github.com/JaimeStill/labeler/pkg/module"
	"github.com/JaimeStill/labeler/pkg/routes"
)

const authPrefix = "/auth"

type Modules struct {
	API    *module.Module
	Corpus *module.Module
	Auth   *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	corpusModule, err := corpus.NewModule(cfg, infra, labeling.Domain{
		Relations: domain.Relations,
		Documents: domain.Documents,
		Segments:  domain.Segments,
		Evidences: domain.Evidences,
	}, authPrefix+"/login")
	if err != nil {
		return nil, err
	}

	return &Modules{
		API:    api.NewModule(cfg, runtime, domain),
		Corpus: corpusModule,
		Auth:   newAuthModule(infra),
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Corpus)
	router.Mount(m.Auth)
}

func newAuthModule(infra *infrastructure.Infrastructure) *module.Module {
	group := infra.Auth.Routes()
	group.Middleware = []func(http.Handler) http.Handler{infra.Sessions.Middleware()}

	mux := http.NewServeMux()
	routes.Register(mux, group)

	m := module.New(authPrefix, mux)
	m.Use(middleware.Logger(infra.Logger.With("module", "auth")))
	m.Use(infra.HTTP.Middleware(m.Name()))
	return m
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.Corpus.BasePath, http.StatusFound)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"status": "not ready",
				"failed": infra.Lifecycle.Failures(),
			})
			return
		}
		if err := infra.Database.Ping(r.Context()); err != nil {
			infra.Logger.Warn("readiness ping failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"status": "not ready",
				"failed": []string{"database"},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	metrics := promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{Registry: infra.Metrics})
	router.HandleNative("GET /metrics", metrics.ServeHTTP)

	return router
}
