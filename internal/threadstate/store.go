// Package threadstate persists the authoritative phase per LinkedIn thread so
// callers can re-supply it on the next turn. The pipeline itself never reads
// this store; it is a convenience for the HTTP layer.
package threadstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"prodicity.app/engage/internal/phase"
)

// ErrNotFound is returned when no state exists for a thread.
var ErrNotFound = errors.New("thread state not found")

// State is the persisted record for one thread.
type State struct {
	ThreadID  string      `json:"thread_id"`
	Phase     phase.Phase `json:"phase"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Config struct {
	RedisURL string
	TTL      time.Duration
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg Config) (*Store, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &Store{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

func key(threadID string) string {
	return "engage:thread:" + threadID
}

// Get returns the persisted state for a thread.
func (s *Store) Get(ctx context.Context, threadID string) (State, error) {
	raw, err := s.rdb.Get(ctx, key(threadID)).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("get thread state: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, fmt.Errorf("decode thread state: %w", err)
	}
	if !st.Phase.Valid() {
		return State{}, fmt.Errorf("stored phase %q is not valid", st.Phase)
	}
	return st, nil
}

// Set persists the authoritative phase for a thread, refreshing the TTL.
func (s *Store) Set(ctx context.Context, threadID string, p phase.Phase) (State, error) {
	if !p.Valid() {
		return State{}, fmt.Errorf("cannot persist invalid phase %q", p)
	}

	st := State{ThreadID: threadID, Phase: p, UpdatedAt: time.Now().UTC()}
	raw, err := json.Marshal(st)
	if err != nil {
		return State{}, fmt.Errorf("encode thread state: %w", err)
	}

	if err := s.rdb.Set(ctx, key(threadID), raw, s.ttl).Err(); err != nil {
		return State{}, fmt.Errorf("set thread state: %w", err)
	}

	slog.DebugContext(ctx, "thread state persisted", "thread_id", threadID, "phase", p)
	return st, nil
}

// Ping verifies connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
