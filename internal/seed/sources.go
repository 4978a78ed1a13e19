package seed

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"
)

// Source produces a seed document
type Source interface {
	Load(ctx context.Context) (*Document, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (*Document, error)

// Load calls f
func (f SourceFunc) Load(ctx context.Context) (*Document, error) {
	return f(ctx)
}

// FileSource reads a JSON or YAML seed file
type FileSource string

// Load reads the file
func (p FileSource) Load(ctx context.Context) (*Document, error) {
	return LoadFile(string(p))
}

// DefaultSource yields the built-in seed
var DefaultSource = SourceFunc(func(ctx context.Context) (*Document, error) {
	return Default()
})

// Drivers accepted by SQLSource
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// SQLSource reads the lexicon and facts tables from a SQL database
type SQLSource struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Load reads both tables concurrently
func (s SQLSource) Load(ctx context.Context) (*Document, error) {
	switch s.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported seed driver %q", s.Driver)
	}

	db, err := sql.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var doc Document
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := queryLexicon(gctx, db)
		doc.Lexicon = records
		return err
	})
	g.Go(func() error {
		records, err := queryFacts(gctx, db)
		doc.Facts = records
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func queryLexicon(ctx context.Context, db *sql.DB) ([]LexiconRecord, error) {
	rows, err := db.QueryContext(ctx, "SELECT word, type, definition, category, root FROM lexicon")
	if err != nil {
		return nil, fmt.Errorf("failed to query lexicon: %w", err)
	}
	defer rows.Close()

	var records []LexiconRecord
	for rows.Next() {
		var rec LexiconRecord
		var typ, definition, category, root sql.NullString
		if err := rows.Scan(&rec.Word, &typ, &definition, &category, &root); err != nil {
			return nil, fmt.Errorf("failed to scan lexicon row: %w", err)
		}
		rec.Type = typ.String
		rec.Definition = definition.String
		rec.Category = category.String
		rec.Root = root.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func queryFacts(ctx context.Context, db *sql.DB) ([]FactRecord, error) {
	rows, err := db.QueryContext(ctx, "SELECT subject, predicate, object, confidence FROM facts")
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var records []FactRecord
	for rows.Next() {
		var rec FactRecord
		var predicate sql.NullString
		if err := rows.Scan(&rec.Subject, &predicate, &rec.Object, &rec.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan fact row: %w", err)
		}
		rec.Predicate = predicate.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadAll loads every source concurrently and merges the documents in
// source order
func LoadAll(ctx context.Context, sources ...Source) (*Document, error) {
	docs := make([]*Document, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			doc, err := src.Load(gctx)
			if err != nil {
				return fmt.Errorf("seed source %d: %w", i, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Document{}
	for _, doc := range docs {
		merged.Merge(doc)
	}
	return merged, nil
}
