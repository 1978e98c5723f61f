package session

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/labeler/pkg/lifecycle"
)

// Manager binds sessions to requests through a cookie.
type Manager struct {
	store  *Store
	cookie string
	secure bool
	maxAge int
	logger *slog.Logger
}

// New creates a Manager backed by a Redis client built from cfg.
// The connection is not checked until Start.
func New(cfg *Config, logger *slog.Logger) *Manager {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(client, cfg, logger)
}

// NewWithClient creates a Manager over an existing Redis client.
func NewWithClient(client *redis.Client, cfg *Config, logger *slog.Logger) *Manager {
	ttl := cfg.TTLDuration()
	return &Manager{
		store:  NewStore(client, WithTTL(ttl), WithPrefix(cfg.KeyPrefix)),
		cookie: cfg.CookieName,
		secure: cfg.CookieSecure,
		maxAge: int(ttl.Seconds()),
		logger: logger.With("system", "sessions"),
	}
}

// Store returns the underlying session store.
func (m *Manager) Store() *Store {
	return m.store
}

// Start registers the Redis ping as a startup hook and closes the client on shutdown.
func (m *Manager) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting session system")

	lc.OnStartup("sessions", func() error {
		if err := m.store.Ping(lc.Context()); err != nil {
			m.logger.Error("session store ping failed", "error", err)
			return err
		}
		m.logger.Info("session store ready")
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := m.store.Close(); err != nil {
			m.logger.Error("session store close failed", "error", err)
			return
		}
		m.logger.Info("session store closed")
	})

	return nil
}

// Middleware loads the request's session, or starts a new one, and stores it in the
// request context. Changes are saved before the response header is written.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.load(r)

			cw := &commitWriter{ResponseWriter: w}
			cw.commit = func() {
				if !sess.Dirty() {
					return
				}
				if err := m.store.Save(r.Context(), sess); err != nil {
					m.logger.Error("session save failed", "error", err, "session", sess.ID)
					return
				}
				http.SetCookie(w, m.newCookie(sess.ID, m.maxAge))
			}

			next.ServeHTTP(cw, r.WithContext(WithSession(r.Context(), sess)))
			cw.once.Do(cw.commit)
		})
	}
}

// Destroy deletes the request's session and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if sess := FromContext(r.Context()); sess != nil {
		sess.destroyed = true
	}
	if c, err := r.Cookie(m.cookie); err == nil {
		if err := m.store.Delete(r.Context(), c.Value); err != nil && !errors.Is(err, ErrInvalidID) {
			m.logger.Error("session delete failed", "error", err)
		}
	}
	http.SetCookie(w, m.newCookie("", -1))
}

func (m *Manager) load(r *http.Request) *Session {
	c, err := r.Cookie(m.cookie)
	if err != nil {
		return m.store.New()
	}

	sess, err := m.store.Load(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidID) {
			m.logger.Warn("session load failed", "error", err)
		}
		return m.store.New()
	}
	return sess
}

func (m *Manager) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// commitWriter saves the session once, just before the first header or body write.
type commitWriter struct {
	http.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *commitWriter) WriteHeader(code int) {
	w.once.Do(w.commit)
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.once.Do(w.commit)
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
