package memory

import (
	"context"
	"errors"
	"time"

	"github.com/baserah/baserah/internal/models"
)

// ErrClosed is returned by stores used after Close
var ErrClosed = errors.New("memory: store closed")

// HistoryStore persists conversation turns
type HistoryStore interface {
	// Append records a turn
	Append(ctx context.Context, turn models.ConversationTurn) error

	// Recent returns up to n of the latest turns, oldest first
	Recent(ctx context.Context, n int) ([]models.ConversationTurn, error)

	// Count returns the number of stored turns
	Count(ctx context.Context) (int64, error)

	// Close releases the store
	Close() error
}

// FactStore mirrors knowledge facts to an external graph
type FactStore interface {
	// StoreFacts writes facts to the graph
	StoreFacts(ctx context.Context, facts []models.KnowledgeFact) error

	// LoadFacts reads every fact from the graph
	LoadFacts(ctx context.Context) ([]models.KnowledgeFact, error)

	// Close closes the store connection
	Close() error
}

// Backend names a persistent history store
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// Config holds history and graph store configuration
type Config struct {
	// Capacity of the in-memory ring
	Capacity int `mapstructure:"capacity"`

	// Backends receiving every turn besides the ring
	Backends []Backend `mapstructure:"backends"`

	// Redis configuration
	RedisURL      string        `mapstructure:"redis_url"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisKey      string        `mapstructure:"redis_key"`
	Retention     time.Duration `mapstructure:"retention"`

	// Dgraph configuration
	DgraphEnabled  bool   `mapstructure:"dgraph_enabled"`
	DgraphAlphaURL string `mapstructure:"dgraph_alpha_url"`

	// BadgerDB configuration, empty path runs in memory
	BadgerPath string `mapstructure:"badger_path"`

	// SQLite configuration
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DefaultConfig returns default history configuration
func DefaultConfig() *Config {
	return &Config{
		Capacity:       1000,
		Backends:       []Backend{BackendMemory},
		RedisURL:       "localhost:6379",
		RedisDB:        0,
		RedisKey:       "baserah:history",
		Retention:      30 * 24 * time.Hour,
		DgraphAlphaURL: "localhost:9080",
		BadgerPath:     "~/.baserah/badger",
		SQLitePath:     "~/.baserah/history.db",
	}
}

// Valid reports whether b names a known backend
func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendBadger, BackendRedis, BackendSQLite:
		return true
	}
	return false
}
