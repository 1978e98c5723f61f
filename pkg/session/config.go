package session

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the Redis connection and session cookie settings.
type Config struct {
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	KeyPrefix    string `toml:"key_prefix"`
	TTL          string `toml:"ttl"`
	CookieName   string `toml:"cookie_name"`
	CookieSecure bool   `toml:"cookie_secure"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Addr         string
	Password     string
	DB           string
	KeyPrefix    string
	TTL          string
	CookieName   string
	CookieSecure string
}

// NewEnv derives environment variable names from a common prefix.
func NewEnv(prefix string) *Env {
	return &Env{
		Addr:         prefix + "_ADDR",
		Password:     prefix + "_PASSWORD",
		DB:           prefix + "_DB",
		KeyPrefix:    prefix + "_KEY_PREFIX",
		TTL:          prefix + "_TTL",
		CookieName:   prefix + "_COOKIE_NAME",
		CookieSecure: prefix + "_COOKIE_SECURE",
	}
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. CookieSecure only turns on.
func (c *Config) Merge(overlay *Config) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.KeyPrefix != "" {
		c.KeyPrefix = overlay.KeyPrefix
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.CookieSecure {
		c.CookieSecure = true
	}
}

func (c *Config) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "labeler"
	}
	if c.TTL == "" {
		c.TTL = "12h"
	}
	if c.CookieName == "" {
		c.CookieName = "labeler_session"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); name != "" && v != "" {
			*dst = v
		}
	}

	setString(env.Addr, &c.Addr)
	setString(env.Password, &c.Password)
	setString(env.KeyPrefix, &c.KeyPrefix)
	setString(env.TTL, &c.TTL)
	setString(env.CookieName, &c.CookieName)

	if v := os.Getenv(env.DB); env.DB != "" && v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.DB = db
		}
	}
	if v := os.Getenv(env.CookieSecure); env.CookieSecure != "" && v != "" {
		if secure, err := strconv.ParseBool(v); err == nil {
			c.CookieSecure = secure
		}
	}
}

func (c *Config) validate() error {
	if c.DB < 0 {
		return fmt.Errorf("db must be non-negative")
	}
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}
