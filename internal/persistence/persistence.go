// Package persistence stores the registry as two whole JSON documents, one per
// collection, under the keys "agents" and "mcpServers". Every save rewrites
// both keys.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentmatrix-dev/agentmatrix/internal/metrics"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/seed"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

const (
	KeyAgents     = models.KeyAgents
	KeyMCPServers = models.KeyMCPServers
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend is a small key/value store holding raw JSON documents.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// PutAll writes every key in one operation where the backend allows it.
	PutAll(ctx context.Context, values map[string][]byte) error
	Close() error
}

// Sink reads and writes registry snapshots through a Backend.
type Sink struct {
	backend Backend
	logger  zerolog.Logger
}

// NewSink wraps backend.
func NewSink(backend Backend, logger zerolog.Logger) *Sink {
	return &Sink{
		backend: backend,
		logger:  logger.With().Str("component", "persistence").Logger(),
	}
}

// Save rewrites both collections.
func (s *Sink) Save(ctx context.Context, snap models.Snapshot) error {
	start := time.Now()
	values := make(map[string][]byte, 2)
	for key, items := range map[string][]*models.Item{KeyAgents: snap.Agents, KeyMCPServers: snap.MCPServers} {
		if items == nil {
			items = []*models.Item{}
		}
		data, err := json.Marshal(items)
		if err != nil {
			metrics.PersistFailures.Inc()
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		values[key] = data
	}
	if err := s.backend.PutAll(ctx, values); err != nil {
		metrics.PersistFailures.Inc()
		return fmt.Errorf("persist registry: %w", err)
	}
	metrics.PersistLatency.Observe(time.Since(start).Seconds())
	return nil
}

// Load reads both collections. A key that is absent, unreadable or not a
// JSON array falls back to the built-in examples for that collection; Load
// itself never fails.
func (s *Sink) Load(ctx context.Context) models.Snapshot {
	builtin := seed.Builtin()
	return models.Snapshot{
		Agents:     s.loadKey(ctx, KeyAgents, builtin.Agents),
		MCPServers: s.loadKey(ctx, KeyMCPServers, builtin.MCPServers),
	}
}

func (s *Sink) loadKey(ctx context.Context, key string, fallback []*models.Item) []*models.Item {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info().Str("key", key).Msg("no stored data, using built-in examples")
		return fallback
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to read stored data, using built-in examples")
		return fallback
	}
	var items []*models.Item
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stored data is malformed, using built-in examples")
		return fallback
	}
	return items
}

// Close releases the backend.
func (s *Sink) Close() error {
	return s.backend.Close()
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	FilePath    string
	RedisURL    string
	RedisPrefix string
	PostgresDSN string
	SQLitePath  string
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileBackend(opts.FilePath), nil
	case "memory":
		return NewMemoryBackend(), nil
	case "redis":
		return NewRedisBackend(ctx, opts.RedisURL, opts.RedisPrefix)
	case "postgres":
		return NewPostgresBackend(ctx, opts.PostgresDSN)
	case "sqlite":
		return NewSQLiteBackend(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
