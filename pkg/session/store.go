package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound indicates no session exists for the given id.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidID indicates an empty or malformed session id.
	ErrInvalidID = errors.New("invalid session id")
)

// Store persists sessions in Redis as JSON with a sliding TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets how long an idle session lives.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the Redis key prefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates a Redis-backed session store.
func NewStore(client *redis.Client, opts ...StoreOption) *Store {
	store := &Store{
		client: client,
		ttl:    12 * time.Hour,
		prefix: "labeler",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// New returns an unsaved session with a random id.
func (s *Store) New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		dirty:     true,
	}
}

// Load retrieves a session by id and refreshes its TTL.
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, ErrInvalidID
	}

	data, err := s.client.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &sess, nil
}

// Save writes the session and clears its dirty flag.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidID
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	sess.dirty = false
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string {
	return s.prefix + ":session:" + id
}
