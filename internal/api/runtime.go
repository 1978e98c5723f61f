package api

import (
	"github.com/JaimeStill/labeler/internal/config"
	"github.com/JaimeStill/labeler/internal/infrastructure"
	"github.com/JaimeStill/labeler/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination        pagination.Config
	ExportConcurrency int
	MaxListSize       int32
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure:    &scoped,
		Pagination:        cfg.API.Pagination,
		ExportConcurrency: cfg.API.ExportConcurrency,
		MaxListSize:       cfg.Storage.MaxListSize,
	}
}
