package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/JaimeStill/labeler/pkg/formatting"
)

const (
	EnvCorpusBasePath    = "LABELER_CORPUS_BASE_PATH"
	EnvCorpusMaxFormSize = "LABELER_CORPUS_MAX_FORM_SIZE"
	EnvCorpusTimeZone    = "LABELER_CORPUS_TIME_ZONE"
)

// CorpusConfig holds the labeling UI settings.
type CorpusConfig struct {
	BasePath    string `toml:"base_path"`
	MaxFormSize string `toml:"max_form_size"`
	TimeZone    string `toml:"time_zone"`
}

// MaxFormSizeBytes returns MaxFormSize in bytes.
func (c *CorpusConfig) MaxFormSizeBytes() int64 {
	return formatting.ParseBytesOr(c.MaxFormSize, 2*1024*1024)
}

// Location returns the zone labeling dates are shown in.
func (c *CorpusConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CorpusConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *CorpusConfig) Merge(overlay *CorpusConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxFormSize != "" {
		c.MaxFormSize = overlay.MaxFormSize
	}
	if overlay.TimeZone != "" {
		c.TimeZone = overlay.TimeZone
	}
}

func (c *CorpusConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/corpus"
	}
	if c.MaxFormSize == "" {
		c.MaxFormSize = "2MB"
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
}

func (c *CorpusConfig) loadEnv() {
	if v := os.Getenv(EnvCorpusBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvCorpusMaxFormSize); v != "" {
		c.MaxFormSize = v
	}
	if v := os.Getenv(EnvCorpusTimeZone); v != "" {
		c.TimeZone = v
	}
}

func (c *CorpusConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxFormSize); err != nil {
		return fmt.Errorf("invalid max_form_size: %w", err)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid time_zone: %w", err)
	}
	return nil
}
