package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baserah/baserah/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service records conversation turns into the in-memory ring and fans them
// out to any persistent sinks. Sink failures are logged, never returned.
type Service struct {
	ring   *RingHistory
	sinks  []sink
	logger *zap.Logger

	stats     Stats
	startTime time.Time
	mu        sync.RWMutex
}

type sink struct {
	backend Backend
	store   HistoryStore
}

// Stats contains history service statistics
type Stats struct {
	Turns      int              `json:"turns"`
	Capacity   int              `json:"capacity"`
	Recorded   int64            `json:"recorded"`
	SinkErrors int64            `json:"sink_errors"`
	Persisted  map[string]int64 `json:"persisted,omitempty"`
	Uptime     time.Duration    `json:"uptime"`
}

// NewService creates a history service holding at most capacity turns in memory
func NewService(capacity int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ring:      NewRingHistory(capacity),
		logger:    logger,
		startTime: time.Now(),
	}
}

// Open creates a history service with every backend named in config
func Open(config *Config, logger *zap.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	svc := NewService(config.Capacity, logger)

	for _, backend := range config.Backends {
		var (
			store HistoryStore
			err   error
		)

		switch backend {
		case BackendMemory:
			continue
		case BackendBadger:
			store, err = NewBadgerHistoryStore(config)
		case BackendRedis:
			store, err = NewRedisHistoryStore(config)
		case BackendSQLite:
			store, err = NewSQLiteHistoryStore(config.SQLitePath)
		default:
			err = fmt.Errorf("unknown history backend %q", backend)
		}

		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to open %s history: %w", backend, err)
		}
		svc.AddSink(backend, store)
	}

	return svc, nil
}

// AddSink registers a persistent store that receives every recorded turn
func (s *Service) AddSink(backend Backend, store HistoryStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink{backend: backend, store: store})
}

// Record stores a turn, assigning an ID and timestamp when missing
func (s *Service) Record(ctx context.Context, turn models.ConversationTurn) models.ConversationTurn {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	if err := s.ring.Append(ctx, turn); err != nil {
		s.logger.Warn("failed to record turn", zap.String("turn_id", turn.ID), zap.Error(err))
	}

	s.mu.RLock()
	sinks := s.sinks
	s.mu.RUnlock()

	failed := int64(0)
	for _, sk := range sinks {
		if err := sk.store.Append(ctx, turn); err != nil {
			failed++
			s.logger.Warn("failed to persist turn",
				zap.String("backend", string(sk.backend)),
				zap.String("turn_id", turn.ID),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	s.stats.Recorded++
	s.stats.SinkErrors += failed
	s.mu.Unlock()

	return turn
}

// Recent returns up to n of the latest in-memory turns, oldest first
func (s *Service) Recent(n int) []models.ConversationTurn {
	turns, _ := s.ring.Recent(context.Background(), n)
	return turns
}

// All returns every in-memory turn, oldest first
func (s *Service) All() []models.ConversationTurn {
	return s.ring.All()
}

// Len returns the number of in-memory turns
func (s *Service) Len() int {
	return s.ring.Len()
}

// Clear drops the in-memory turns. Persistent sinks keep theirs.
func (s *Service) Clear() {
	s.ring.Clear()
}

// GetStats returns history statistics, counting persisted turns per sink
func (s *Service) GetStats(ctx context.Context) *Stats {
	s.mu.RLock()
	stats := s.stats
	sinks := s.sinks
	s.mu.RUnlock()

	stats.Turns = s.ring.Len()
	stats.Capacity = s.ring.Capacity()
	stats.Uptime = time.Since(s.startTime)

	if len(sinks) > 0 {
		stats.Persisted = make(map[string]int64, len(sinks))
		for _, sk := range sinks {
			n, err := sk.store.Count(ctx)
			if err != nil {
				s.logger.Warn("failed to count turns", zap.String("backend", string(sk.backend)), zap.Error(err))
				continue
			}
			stats.Persisted[string(sk.backend)] = n
		}
	}

	return &stats
}

// Close gracefully shuts down every sink
func (s *Service) Close() error {
	s.mu.Lock()
	sinks := s.sinks
	s.sinks = nil
	s.mu.Unlock()

	var errs []error
	for _, sk := range sinks {
		if err := sk.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sk.backend, err))
		}
	}
	if err := s.ring.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
