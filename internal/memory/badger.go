package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/baserah/baserah/internal/models"
	"github.com/dgraph-io/badger/v4"
)

const (
	badgerTurnPrefix = "history:turn:"
	badgerSeqKey     = "history:seq"
)

// BadgerHistoryStore implements HistoryStore using BadgerDB
type BadgerHistoryStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerHistoryStore opens a BadgerDB-backed history store. An empty
// BadgerPath keeps the database in memory.
func NewBadgerHistoryStore(config *Config) (*BadgerHistoryStore, error) {
	var opts badger.Options
	if config.BadgerPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(expandPath(config.BadgerPath))
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	seq, err := db.GetSequence([]byte(badgerSeqKey), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to lease sequence: %w", err)
	}

	return &BadgerHistoryStore{db: db, seq: seq}, nil
}

// Append saves a turn under the next sequence number
func (s *BadgerHistoryStore) Append(ctx context.Context, turn models.ConversationTurn) error {
	n, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(turnKey(n), data)
	})
}

// Recent returns up to n of the latest turns, oldest first
func (s *BadgerHistoryStore) Recent(ctx context.Context, n int) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerTurnPrefix)
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(badgerTurnPrefix), 0xFF)
		for it.Seek(seek); it.Valid(); it.Next() {
			if n > 0 && len(turns) >= n {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var turn models.ConversationTurn
				if err := json.Unmarshal(val, &turn); err != nil {
					return nil // Skip malformed entries
				}
				turns = append(turns, turn)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Reverse(turns)
	return turns, nil
}

// Count returns the number of stored turns
func (s *BadgerHistoryStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerTurnPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if bytes.HasPrefix(it.Item().Key(), opts.Prefix) {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Close releases the sequence and closes the BadgerDB instance
func (s *BadgerHistoryStore) Close() error {
	if err := s.seq.Release(); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to release sequence: %w", err)
	}
	return s.db.Close()
}

func turnKey(n uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgerTurnPrefix, n))
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
