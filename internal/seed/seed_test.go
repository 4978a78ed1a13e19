package seed

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baserah/baserah/internal/knowledge"
	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	doc, err := Default()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(doc.Lexicon), 25)
	assert.GreaterOrEqual(t, len(doc.Facts), 8)

	lex := lexicon.New(nil, nil)
	store := knowledge.NewStore(lex, nil, nil)
	require.NoError(t, Apply(doc, lex, store))

	entry, ok := lex.Get("صنعك")
	require.True(t, ok)
	assert.Equal(t, "creator", entry.Category)
	assert.Equal(t, models.TypeVerb, entry.Type)

	for _, category := range []string{"greeting", "question", "pronoun", "system", "creator", "gratitude", "action", "request"} {
		assert.NotEmpty(t, lex.ByCategory(category), category)
	}

	facts := store.Facts("بصيرة")
	require.Len(t, facts, 4)
	assert.Contains(t, facts[2].Object, "باسل يحيى عبدالله")
}

func TestDecodeFormats(t *testing.T) {
	yamlDoc := `
lexicon:
  - {word: قمر, type: noun, category: nature}
facts:
  - {subject: قمر, predicate: يدور_حول, object: الأرض, confidence: 0.8}
`
	jsonDoc := `{"lexicon":[{"word":"قمر","type":"noun","category":"nature"}],
"facts":[{"subject":"قمر","predicate":"يدور_حول","object":"الأرض","confidence":0.8}]}`

	want := &Document{
		Lexicon: []LexiconRecord{{Word: "قمر", Type: "noun", Category: "nature"}},
		Facts:   []FactRecord{{Subject: "قمر", Predicate: "يدور_حول", Object: "الأرض", Confidence: 0.8}},
	}

	fromYAML, err := Decode(strings.NewReader(yamlDoc), FormatYAML)
	require.NoError(t, err)
	if diff := cmp.Diff(want, fromYAML); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}

	fromJSON, err := Decode(strings.NewReader(jsonDoc), FormatJSON)
	require.NoError(t, err)
	if diff := cmp.Diff(want, fromJSON); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty word", `{"lexicon":[{"word":" "}]}`},
		{"bad type", `{"lexicon":[{"word":"x","type":"adverb"}]}`},
		{"missing object", `{"facts":[{"subject":"x","predicate":"p"}]}`},
		{"confidence out of range", `{"facts":[{"subject":"x","object":"y","confidence":1.5}]}`},
		{"unknown field", `{"words":[]}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatJSON)
			assert.ErrorIs(t, err, ErrInvalidSeed)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "extra.yml")
	require.NoError(t, os.WriteFile(path, []byte("lexicon:\n  - {word: شمس, type: noun}\n"), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Lexicon, 1)
	assert.Equal(t, "شمس", doc.Lexicon[0].Word)

	_, err = LoadFile(filepath.Join(dir, "seed.toml"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFactConversionRoundTrip(t *testing.T) {
	facts := []models.KnowledgeFact{{Subject: "a", Predicate: "p", Object: "b", Confidence: 0.5}}
	assert.Equal(t, facts, FromFacts(facts).KnowledgeFacts())
}

func writeSQLiteSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.db")

	db, err := sql.Open(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE lexicon (word TEXT, type TEXT, definition TEXT, category TEXT, root TEXT);
		CREATE TABLE facts (subject TEXT, predicate TEXT, object TEXT, confidence REAL);
		INSERT INTO lexicon VALUES ('نجم', 'noun', 'جرم سماوي', 'nature', NULL);
		INSERT INTO facts VALUES ('نجم', 'هو', 'كرة من الغاز', 0.7);
	`)
	require.NoError(t, err)
	return path
}

func TestSQLSourceSQLite(t *testing.T) {
	src := SQLSource{Driver: DriverSQLite, DSN: writeSQLiteSeed(t)}

	doc, err := src.Load(context.Background())
	require.NoError(t, err)

	want := &Document{
		Lexicon: []LexiconRecord{{Word: "نجم", Type: "noun", Definition: "جرم سماوي", Category: "nature"}},
		Facts:   []FactRecord{{Subject: "نجم", Predicate: "هو", Object: "كرة من الغاز", Confidence: 0.7}},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLSourceRejectsDriver(t *testing.T) {
	_, err := SQLSource{Driver: "oracle"}.Load(context.Background())
	assert.Error(t, err)
}

func TestLoadAllMergesInOrder(t *testing.T) {
	sqlite := SQLSource{Driver: DriverSQLite, DSN: writeSQLiteSeed(t)}

	doc, err := LoadAll(context.Background(), DefaultSource, sqlite)
	require.NoError(t, err)

	def, err := Default()
	require.NoError(t, err)

	require.Len(t, doc.Lexicon, len(def.Lexicon)+1)
	assert.Equal(t, def.Lexicon[0], doc.Lexicon[0])
	assert.Equal(t, "نجم", doc.Lexicon[len(doc.Lexicon)-1].Word)
}

func TestLoadAllPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := SourceFunc(func(ctx context.Context) (*Document, error) { return nil, boom })

	_, err := LoadAll(context.Background(), DefaultSource, failing)
	assert.ErrorIs(t, err, boom)
}
