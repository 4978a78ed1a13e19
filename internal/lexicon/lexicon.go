package lexicon

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Match is a lexicon entry similar to a queried word
type Match struct {
	Word       string
	Similarity float64
	Entry      models.LexiconEntry
}

// Lexicon holds known words, their vectors and a category index.
// Entries keep their insertion position for the lifetime of the lexicon,
// which makes similarity ties resolve deterministically.
type Lexicon struct {
	entries    map[string]*models.LexiconEntry
	order      []string
	byCategory map[string][]string
	categories []string
	vectorizer Vectorizer
	logger     *zap.Logger
	mu         sync.RWMutex
}

// New creates an empty lexicon. A nil vectorizer selects the character vectorizer.
func New(vectorizer Vectorizer, logger *zap.Logger) *Lexicon {
	if vectorizer == nil {
		vectorizer = NewCharVectorizer(DefaultDimensions)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Lexicon{
		entries:    make(map[string]*models.LexiconEntry),
		byCategory: make(map[string][]string),
		vectorizer: vectorizer,
		logger:     logger,
	}
}

// Normalize trims and NFC-normalizes a word so that composed and
// decomposed spellings hit the same entry
func Normalize(word string) string {
	return norm.NFC.String(strings.TrimSpace(word))
}

// AddEntry inserts or overwrites a word. An overwritten word keeps its
// original position and moves to its new category.
func (l *Lexicon) AddEntry(word string, typ models.GrammaticalType, definition, category, root string) (models.LexiconEntry, error) {
	word = Normalize(word)
	if word == "" {
		return models.LexiconEntry{}, fmt.Errorf("lexicon entry has empty word")
	}
	if typ == "" {
		typ = models.TypeUnknown
	}
	if category == "" {
		category = models.CategoryGeneral
	}

	entry := &models.LexiconEntry{
		Word:       word,
		Type:       typ,
		Definition: definition,
		Category:   category,
		Root:       root,
		Vector:     l.vectorizer.Vector(word),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[word]; ok {
		entry.UsageCount = existing.UsageCount
		if existing.Category != category {
			l.removeFromCategory(existing.Category, word)
			l.addToCategory(category, word)
		}
		l.logger.Debug("lexicon entry overwritten", zap.String("word", word))
	} else {
		l.order = append(l.order, word)
		l.addToCategory(category, word)
	}
	l.entries[word] = entry

	return cloneEntry(entry), nil
}

func (l *Lexicon) addToCategory(category, word string) {
	if _, ok := l.byCategory[category]; !ok {
		l.categories = append(l.categories, category)
	}
	l.byCategory[category] = append(l.byCategory[category], word)
}

func (l *Lexicon) removeFromCategory(category, word string) {
	words := l.byCategory[category]
	if i := slices.Index(words, word); i >= 0 {
		l.byCategory[category] = slices.Delete(words, i, i+1)
	}
}

// Lookup returns the entry for word and counts the hit
func (l *Lexicon) Lookup(word string) (models.LexiconEntry, bool) {
	word = Normalize(word)

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[word]
	if !ok {
		return models.LexiconEntry{}, false
	}
	entry.UsageCount++
	return cloneEntry(entry), true
}

// Get returns the entry for word without touching its usage count
func (l *Lexicon) Get(word string) (models.LexiconEntry, bool) {
	word = Normalize(word)

	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[word]
	if !ok {
		return models.LexiconEntry{}, false
	}
	return cloneEntry(entry), true
}

// FindSimilar returns entries whose similarity to word is strictly above
// threshold, best first. The word itself is never part of the result.
func (l *Lexicon) FindSimilar(word string, threshold float64) []Match {
	word = Normalize(word)
	query := l.vectorizer.Vector(word)

	l.mu.RLock()
	defer l.mu.RUnlock()

	var matches []Match
	for _, candidate := range l.order {
		if candidate == word {
			continue
		}
		entry := l.entries[candidate]
		sim := Cosine(query, entry.Vector)
		if sim > threshold {
			matches = append(matches, Match{
				Word:       candidate,
				Similarity: sim,
				Entry:      cloneEntry(entry),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return matches
}

// Similarity compares two words with the lexicon's vectorizer
func (l *Lexicon) Similarity(a, b string) float64 {
	return Cosine(l.vectorizer.Vector(Normalize(a)), l.vectorizer.Vector(Normalize(b)))
}

// ByCategory returns the entries of a category in insertion order
func (l *Lexicon) ByCategory(category string) []models.LexiconEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	words := l.byCategory[category]
	result := make([]models.LexiconEntry, 0, len(words))
	for _, w := range words {
		result = append(result, cloneEntry(l.entries[w]))
	}
	return result
}

// Categories returns every category that has ever held an entry, in first-seen order
func (l *Lexicon) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]string, 0, len(l.categories))
	for _, c := range l.categories {
		if len(l.byCategory[c]) > 0 {
			result = append(result, c)
		}
	}
	return result
}

// Entries returns all entries in insertion order
func (l *Lexicon) Entries() []models.LexiconEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]models.LexiconEntry, 0, len(l.order))
	for _, w := range l.order {
		result = append(result, cloneEntry(l.entries[w]))
	}
	return result
}

// TopUsed returns up to n entries with the highest usage count
func (l *Lexicon) TopUsed(n int) []models.LexiconEntry {
	entries := l.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UsageCount > entries[j].UsageCount
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Len returns the number of entries
func (l *Lexicon) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Dimensions returns the vector width used by the lexicon
func (l *Lexicon) Dimensions() int {
	return l.vectorizer.Dimensions()
}

func cloneEntry(e *models.LexiconEntry) models.LexiconEntry {
	out := *e
	out.Vector = slices.Clone(e.Vector)
	return out
}
