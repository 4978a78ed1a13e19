package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/baserah/baserah/internal/knowledge"
	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSeed is returned for seed documents that fail validation
var ErrInvalidSeed = errors.New("invalid seed")

//go:embed default.yaml
var defaultSeed []byte

// LexiconRecord is one dictionary entry in a seed document
type LexiconRecord struct {
	Word       string `json:"word" yaml:"word"`
	Type       string `json:"type" yaml:"type"`
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	Root       string `json:"root,omitempty" yaml:"root,omitempty"`
}

// FactRecord is one knowledge fact in a seed document
type FactRecord struct {
	Subject    string  `json:"subject" yaml:"subject"`
	Predicate  string  `json:"predicate" yaml:"predicate"`
	Object     string  `json:"object" yaml:"object"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Document is a dictionary plus knowledge base
type Document struct {
	Lexicon []LexiconRecord `json:"lexicon" yaml:"lexicon"`
	Facts   []FactRecord    `json:"facts" yaml:"facts"`
}

// Format is a seed encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Default returns the built-in seed
func Default() (*Document, error) {
	return Decode(bytes.NewReader(defaultSeed), FormatYAML)
}

// Decode parses a seed document in the given format
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FormatFromPath picks the format by file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported seed file extension %q", filepath.Ext(path))
}

// LoadFile reads a JSON or YAML seed file
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks every record
func (d *Document) Validate() error {
	for i, rec := range d.Lexicon {
		if strings.TrimSpace(rec.Word) == "" {
			return fmt.Errorf("%w: lexicon[%d] has no word", ErrInvalidSeed, i)
		}
		if rec.Type != "" && !models.GrammaticalType(rec.Type).Valid() {
			return fmt.Errorf("%w: lexicon[%d] %q has unknown type %q", ErrInvalidSeed, i, rec.Word, rec.Type)
		}
	}
	for i, rec := range d.Facts {
		if strings.TrimSpace(rec.Subject) == "" || strings.TrimSpace(rec.Object) == "" {
			return fmt.Errorf("%w: facts[%d] needs a subject and an object", ErrInvalidSeed, i)
		}
		if rec.Confidence < 0 || rec.Confidence > 1 {
			return fmt.Errorf("%w: facts[%d] confidence %v outside [0,1]", ErrInvalidSeed, i, rec.Confidence)
		}
	}
	return nil
}

// Merge appends other's records to d
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	d.Lexicon = append(d.Lexicon, other.Lexicon...)
	d.Facts = append(d.Facts, other.Facts...)
}

// KnowledgeFacts converts the fact records
func (d *Document) KnowledgeFacts() []models.KnowledgeFact {
	facts := make([]models.KnowledgeFact, len(d.Facts))
	for i, f := range d.Facts {
		facts[i] = models.KnowledgeFact(f)
	}
	return facts
}

// FromFacts wraps facts in a document
func FromFacts(facts []models.KnowledgeFact) *Document {
	doc := &Document{Facts: make([]FactRecord, len(facts))}
	for i, f := range facts {
		doc.Facts[i] = FactRecord(f)
	}
	return doc
}

// Apply loads the document into the lexicon and knowledge store
func Apply(doc *Document, lex *lexicon.Lexicon, store *knowledge.Store) error {
	for _, rec := range doc.Lexicon {
		if _, err := lex.AddEntry(rec.Word, models.GrammaticalType(rec.Type), rec.Definition, rec.Category, rec.Root); err != nil {
			return fmt.Errorf("failed to add %q: %w", rec.Word, err)
		}
	}
	for _, rec := range doc.Facts {
		if _, err := store.AddKnowledge(rec.Subject, rec.Predicate, rec.Object, rec.Confidence); err != nil {
			return fmt.Errorf("failed to add fact about %q: %w", rec.Subject, err)
		}
	}
	return nil
}
