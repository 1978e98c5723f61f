package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/labeler/pkg/middleware"
	"github.com/JaimeStill/labeler/pkg/pagination"
)

const (
	EnvAPIBasePath          = "LABELER_API_BASE_PATH"
	EnvAPIExportConcurrency = "LABELER_API_EXPORT_CONCURRENCY"
)

var (
	corsEnv       = middleware.NewCORSEnv("LABELER_CORS")
	paginationEnv = pagination.NewConfigEnv("LABELER_PAGINATION")
)

// APIConfig holds JSON API routing, CORS, pagination, and export settings.
type APIConfig struct {
	BasePath          string                `toml:"base_path"`
	ExportConcurrency int                   `toml:"export_concurrency"`
	CORS              middleware.CORSConfig `toml:"cors"`
	Pagination        pagination.Config     `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.ExportConcurrency != 0 {
		c.ExportConcurrency = overlay.ExportConcurrency
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.ExportConcurrency == 0 {
		c.ExportConcurrency = 4
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIExportConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ExportConcurrency = n
		}
	}
}

func (c *APIConfig) validate() error {
	if c.ExportConcurrency < 1 {
		return fmt.Errorf("export_concurrency must be positive: %d", c.ExportConcurrency)
	}
	return nil
}
