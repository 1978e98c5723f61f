// Package auth authenticates labelers through an OpenID Connect provider and
// records their identity in the session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/JaimeStill/labeler/pkg/handlers"
	"github.com/JaimeStill/labeler/pkg/lifecycle"
	"github.com/JaimeStill/labeler/pkg/routes"
	"github.com/JaimeStill/labeler/pkg/session"
)

const (
	stateKey = "auth_state"
	nextKey  = "auth_next"
)

var (
	// ErrNotReady indicates the identity provider has not been discovered yet.
	ErrNotReady = errors.New("identity provider not ready")
	// ErrInvalidState indicates the callback state does not match the pending login.
	ErrInvalidState = errors.New("invalid login state")
	// ErrMissingToken indicates the token response carried no id_token.
	ErrMissingToken = errors.New("token response missing id_token")
)

// Authenticator runs the authorization code flow and guards routes that need an identity.
type Authenticator struct {
	cfg      *Config
	sessions *session.Manager
	logger   *slog.Logger

	mu       sync.RWMutex
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// New creates an Authenticator. Provider discovery happens in Start.
func New(cfg *Config, sessions *session.Manager, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		cfg:      cfg,
		sessions: sessions,
		logger:   logger.With("system", "auth"),
	}
}

// Start registers provider discovery as a startup hook when authentication is enabled.
func (a *Authenticator) Start(lc *lifecycle.Coordinator) error {
	if !a.cfg.Enabled {
		a.logger.Warn("authentication disabled", "dev_user", a.cfg.DevUser)
		return nil
	}

	lc.OnStartup("auth", func() error {
		provider, err := oidc.NewProvider(lc.Context(), a.cfg.IssuerURL)
		if err != nil {
			a.logger.Error("oidc discovery failed", "issuer", a.cfg.IssuerURL, "error", err)
			return fmt.Errorf("discover %s: %w", a.cfg.IssuerURL, err)
		}

		a.mu.Lock()
		a.oauth = &oauth2.Config{
			ClientID:     a.cfg.ClientID,
			ClientSecret: a.cfg.ClientSecret,
			RedirectURL:  a.cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       a.cfg.Scopes,
		}
		a.verifier = provider.Verifier(&oidc.Config{ClientID: a.cfg.ClientID})
		a.mu.Unlock()

		a.logger.Info("oidc provider ready", "issuer", a.cfg.IssuerURL)
		return nil
	})

	return nil
}

// Routes returns the login, callback, and logout routes.
func (a *Authenticator) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/login", Handler: a.login},
			{Method: "GET", Pattern: "/callback", Handler: a.callback},
			{Method: "GET", Pattern: "/logout", Handler: a.logout},
			{Method: "POST", Pattern: "/logout", Handler: a.logout},
		},
	}
}

// Require returns middleware that redirects requests without an identity to loginPath.
// mountPath is the prefix stripped from the request before it reaches the middleware;
// it is restored in the post-login target. With authentication disabled the session
// is attributed to the configured dev user.
func (a *Authenticator) Require(loginPath, mountPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			if sess.User == "" {
				if !a.cfg.Enabled {
					sess.SetUser(a.cfg.DevUser)
				} else {
					dest := strings.TrimSuffix(mountPath, "/") + r.URL.RequestURI()
					target := loginPath + "?next=" + url.QueryEscape(dest)
					http.Redirect(w, r, target, http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) login(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	next := SafeNext(r.URL.Query().Get("next"))

	if !a.cfg.Enabled {
		sess.SetUser(a.cfg.DevUser)
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	oauth, _ := a.provider()
	if oauth == nil {
		handlers.RespondError(w, a.logger, http.StatusServiceUnavailable, ErrNotReady)
		return
	}

	state := uuid.NewString()
	sess.Set(stateKey, state)
	sess.Set(nextKey, next)

	http.Redirect(w, r, oauth.AuthCodeURL(state), http.StatusFound)
}

func (a *Authenticator) callback(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	expected := sess.Take(stateKey)
	next := SafeNext(sess.Take(nextKey))

	if expected == "" || r.URL.Query().Get("state") != expected {
		handlers.RespondError(w, a.logger, http.StatusBadRequest, ErrInvalidState)
		return
	}

	if msg := r.URL.Query().Get("error"); msg != "" {
		handlers.RespondError(w, a.logger, http.StatusUnauthorized, fmt.Errorf("provider error: %s", msg))
		return
	}

	user, err := a.exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, ErrNotReady) {
			status = http.StatusServiceUnavailable
		}
		handlers.RespondError(w, a.logger, status, err)
		return
	}

	sess.SetUser(user)
	a.logger.Info("user logged in", "user", user)
	http.Redirect(w, r, next, http.StatusFound)
}

func (a *Authenticator) logout(w http.ResponseWriter, r *http.Request) {
	if user := session.User(r.Context()); user != "" {
		a.logger.Info("user logged out", "user", user)
	}
	a.sessions.Destroy(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Authenticator) exchange(ctx context.Context, code string) (string, error) {
	oauth, verifier := a.provider()
	if oauth == nil {
		return "", ErrNotReady
	}

	token, err := oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", ErrMissingToken
	}

	idToken, err := verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("verify id_token: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("decode claims: %w", err)
	}

	return UserFromClaims(claims, a.cfg.UserClaim, idToken.Subject), nil
}

func (a *Authenticator) provider() (*oauth2.Config, *oidc.IDTokenVerifier) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.oauth, a.verifier
}

// UserFromClaims picks the judge identity from the token claims: the configured claim,
// then email, then the subject.
func UserFromClaims(claims map[string]any, claim, subject string) string {
	for _, name := range []string{claim, "email"} {
		if v, ok := claims[name].(string); ok && v != "" {
			return v
		}
	}
	return subject
}

// SafeNext returns target when it is a local absolute path, otherwise "/".
func SafeNext(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return "/"
	}
	return target
}
