package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds OpenID Connect client settings. With Enabled false every request is
// attributed to DevUser.
type Config struct {
	Enabled      bool     `toml:"enabled"`
	IssuerURL    string   `toml:"issuer_url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURL  string   `toml:"redirect_url"`
	Scopes       []string `toml:"scopes"`
	UserClaim    string   `toml:"user_claim"`
	DevUser      string   `toml:"dev_user"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled      string
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       string
	UserClaim    string
	DevUser      string
}

// NewEnv derives environment variable names from a common prefix.
func NewEnv(prefix string) *Env {
	return &Env{
		Enabled:      prefix + "_ENABLED",
		IssuerURL:    prefix + "_ISSUER_URL",
		ClientID:     prefix + "_CLIENT_ID",
		ClientSecret: prefix + "_CLIENT_SECRET",
		RedirectURL:  prefix + "_REDIRECT_URL",
		Scopes:       prefix + "_SCOPES",
		UserClaim:    prefix + "_USER_CLAIM",
		DevUser:      prefix + "_DEV_USER",
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled

	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.ClientSecret != "" {
		c.ClientSecret = overlay.ClientSecret
	}
	if overlay.RedirectURL != "" {
		c.RedirectURL = overlay.RedirectURL
	}
	if overlay.Scopes != nil {
		c.Scopes = overlay.Scopes
	}
	if overlay.UserClaim != "" {
		c.UserClaim = overlay.UserClaim
	}
	if overlay.DevUser != "" {
		c.DevUser = overlay.DevUser
	}
}

func (c *Config) loadDefaults() {
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "profile", "email"}
	}
	if c.UserClaim == "" {
		c.UserClaim = "preferred_username"
	}
	if c.DevUser == "" {
		c.DevUser = "dev"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); name != "" && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(env.Enabled); env.Enabled != "" && v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	setString(env.IssuerURL, &c.IssuerURL)
	setString(env.ClientID, &c.ClientID)
	setString(env.ClientSecret, &c.ClientSecret)
	setString(env.RedirectURL, &c.RedirectURL)
	setString(env.UserClaim, &c.UserClaim)
	setString(env.DevUser, &c.DevUser)

	if v := os.Getenv(env.Scopes); env.Scopes != "" && v != "" {
		c.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("issuer_url required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect_url required when auth is enabled")
	}
	return nil
}
