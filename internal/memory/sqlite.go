package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/baserah/baserah/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteHistoryStore implements HistoryStore as an append-only SQLite table
type SQLiteHistoryStore struct {
	db *sql.DB
}

// NewSQLiteHistoryStore opens (creating if needed) the history database
func NewSQLiteHistoryStore(dbPath string) (*SQLiteHistoryStore, error) {
	dbPath = expandPath(dbPath)

	// Create directory if it doesn't exist
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteHistoryStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the conversation table
func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversation_turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		intent TEXT NOT NULL,
		confidence REAL,
		method TEXT,
		keywords TEXT,
		scores TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_turns_timestamp ON conversation_turns(timestamp);
	CREATE INDEX IF NOT EXISTS idx_turns_intent ON conversation_turns(intent);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append records a turn
func (s *SQLiteHistoryStore) Append(ctx context.Context, turn models.ConversationTurn) error {
	query := `
		INSERT INTO conversation_turns (
			id, timestamp, input, output, intent, confidence, method, keywords, scores
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	keywords, err := json.Marshal(turn.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	scores, err := json.Marshal(turn.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		turn.ID,
		turn.Timestamp,
		turn.Input,
		turn.Output,
		string(turn.Intent),
		turn.Confidence,
		string(turn.Method),
		string(keywords),
		string(scores),
	)
	return err
}

// Recent returns up to n of the latest turns, oldest first
func (s *SQLiteHistoryStore) Recent(ctx context.Context, n int) ([]models.ConversationTurn, error) {
	query := "SELECT id, timestamp, input, output, intent, confidence, method, keywords, scores FROM conversation_turns ORDER BY seq DESC"
	args := []interface{}{}

	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var (
			turn             models.ConversationTurn
			intent, method   string
			keywords, scores sql.NullString
			timestamp        time.Time
		)

		err := rows.Scan(
			&turn.ID,
			&timestamp,
			&turn.Input,
			&turn.Output,
			&intent,
			&turn.Confidence,
			&method,
			&keywords,
			&scores,
		)
		if err != nil {
			return nil, err
		}

		turn.Timestamp = timestamp
		turn.Intent = models.Intent(intent)
		turn.Method = models.ResponseMethod(method)
		if keywords.Valid {
			_ = json.Unmarshal([]byte(keywords.String), &turn.Keywords)
		}
		if scores.Valid {
			_ = json.Unmarshal([]byte(scores.String), &turn.Scores)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(turns)
	return turns, nil
}

// Count returns the number of stored turns
func (s *SQLiteHistoryStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversation_turns").Scan(&count)
	return count, err
}

// IntentCounts returns how many turns were classified under each intent
func (s *SQLiteHistoryStore) IntentCounts(ctx context.Context, since time.Time) (map[models.Intent]int, error) {
	query := `
		SELECT intent, COUNT(*)
		FROM conversation_turns
		WHERE timestamp >= ?
		GROUP BY intent
	`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Intent]int)
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, err
		}
		counts[models.Intent(intent)] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}
