// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, sessions, identity,
// metrics) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/labeler/internal/config"
	"github.com/JaimeStill/labeler/pkg/auth"
	"github.com/JaimeStill/labeler/pkg/database"
	"github.com/JaimeStill/labeler/pkg/lifecycle"
	"github.com/JaimeStill/labeler/pkg/middleware"
	"github.com/JaimeStill/labeler/pkg/session"
	"github.com/JaimeStill/labeler/pkg/storage"
)

// MetricsNamespace prefixes every collector the service registers.
const MetricsNamespace = "labeler"

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, blob storage, sessions, authentication, and metrics.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Sessions  *session.Manager
	Auth      *auth.Authenticator
	Metrics   *prometheus.Registry
	HTTP      *middleware.HTTPMetrics
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	sessions := session.New(&cfg.Sessions, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.Connection(), MetricsNamespace),
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Sessions:  sessions,
		Auth:      auth.New(&cfg.Auth, sessions, logger),
		Metrics:   reg,
		HTTP:      middleware.NewHTTPMetrics(reg, MetricsNamespace),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database, storage, session, and identity provider hooks are registered for
// startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Sessions.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("sessions start failed: %w", err)
	}
	if err := i.Auth.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("auth start failed: %w", err)
	}
	return nil
}
