// Package session provides Redis-backed HTTP sessions carrying the authenticated
// identity and a queue of one-shot flash messages.
package session

import (
	"context"
	"slices"
	"time"
)

// Message levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Message is a flash notification shown once on the next rendered page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Session is the server-side state bound to a session cookie.
type Session struct {
	ID        string            `json:"id"`
	User      string            `json:"user,omitempty"`
	Messages  []Message         `json:"messages,omitempty"`
	Values    map[string]string `json:"values,omitempty"`
	CreatedAt time.Time         `json:"created_at"`

	dirty     bool
	destroyed bool
}

// SetUser records the authenticated identity.
func (s *Session) SetUser(user string) {
	s.User = user
	s.dirty = true
}

// AddMessage queues a flash message.
func (s *Session) AddMessage(level, text string) {
	s.Messages = append(s.Messages, Message{Level: level, Text: text})
	s.dirty = true
}

// Info queues an info-level flash message.
func (s *Session) Info(text string) { s.AddMessage(LevelInfo, text) }

// Warning queues a warning-level flash message.
func (s *Session) Warning(text string) { s.AddMessage(LevelWarning, text) }

// PopMessages returns and clears the queued flash messages.
func (s *Session) PopMessages() []Message {
	if len(s.Messages) == 0 {
		return nil
	}
	msgs := slices.Clone(s.Messages)
	s.Messages = nil
	s.dirty = true
	return msgs
}

// Set stores a string value, such as a pending login state.
func (s *Session) Set(key, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	s.Values[key] = value
	s.dirty = true
}

// Take returns the value for key and removes it.
func (s *Session) Take(key string) string {
	v, ok := s.Values[key]
	if !ok {
		return ""
	}
	delete(s.Values, key)
	s.dirty = true
	return v
}

// Dirty reports whether the session changed since it was loaded and still needs saving.
func (s *Session) Dirty() bool {
	return s.dirty && !s.destroyed
}

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil when the session middleware did not run.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// User returns the authenticated identity from the request's session, or "".
func User(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.User
	}
	return ""
}
