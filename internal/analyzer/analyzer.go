package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
)

// Config holds the analyzer thresholds
type Config struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"` // Minimum similarity for the lexicon-neighbour stage
	KeywordThreshold    float64 `mapstructure:"keyword_threshold"`    // Words must exceed this confidence to count as keywords
	EntityThreshold     float64 `mapstructure:"entity_threshold"`     // Words must exceed this confidence to count as entities
}

// DefaultConfig returns the default analyzer configuration
func DefaultConfig() *Config {
	return &Config{
		SimilarityThreshold: 0.5,
		KeywordThreshold:    0.4,
		EntityThreshold:     0.5,
	}
}

// Confidence assigned by each fallback stage
const (
	confidenceLexicon      = 1.0
	confidenceDefiniteNoun = 0.7
	confidenceVerbPrefix   = 0.6
	confidencePattern      = 0.5
	confidenceDefault      = 0.2
)

// Analyzer tags words and sentences against a lexicon
type Analyzer struct {
	lexicon *lexicon.Lexicon
	config  *Config
	logger  *zap.Logger
}

// New creates an analyzer over lex
func New(lex *lexicon.Lexicon, config *Config, logger *zap.Logger) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		lexicon: lex,
		config:  config,
		logger:  logger,
	}
}

var punctuation = strings.NewReplacer(
	"؟", " ", "?", " ", "!", " ", ".", " ",
	",", " ", "،", " ", "؛", " ", ";", " ",
)

// Tokenize splits text into words, dropping punctuation and empty tokens
func Tokenize(text string) []string {
	fields := strings.Fields(punctuation.Replace(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := lexicon.Normalize(f); w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// AnalyzeWord classifies a single word. The first stage that produces a
// result wins: exact lexicon hit, nearest lexicon neighbour, Arabic
// morphology patterns, then an unknown default.
func (a *Analyzer) AnalyzeWord(word string) models.WordAnalysis {
	word = lexicon.Normalize(word)
	if word == "" {
		return models.WordAnalysis{
			Type:       models.TypeUnknown,
			Category:   models.CategoryGeneral,
			Confidence: confidenceDefault,
			Source:     models.AnalysisDefault,
		}
	}

	if entry, ok := a.lexicon.Lookup(word); ok {
		return models.WordAnalysis{
			Word:       word,
			Type:       entry.Type,
			Category:   entry.Category,
			Confidence: confidenceLexicon,
			Source:     models.AnalysisLexicon,
		}
	}

	if matches := a.lexicon.FindSimilar(word, a.config.SimilarityThreshold); len(matches) > 0 {
		best := matches[0]
		return models.WordAnalysis{
			Word:       word,
			Type:       best.Entry.Type,
			Category:   best.Entry.Category,
			Confidence: best.Similarity,
			Source:     models.AnalysisSimilarity,
			Matched:    best.Word,
		}
	}

	if isArabic(word) {
		typ, confidence := arabicPattern(word)
		return models.WordAnalysis{
			Word:       word,
			Type:       typ,
			Category:   models.CategoryGeneral,
			Confidence: confidence,
			Source:     models.AnalysisPattern,
		}
	}

	return models.WordAnalysis{
		Word:       word,
		Type:       models.TypeUnknown,
		Category:   models.CategoryGeneral,
		Confidence: confidenceDefault,
		Source:     models.AnalysisDefault,
	}
}

// arabicPattern guesses a grammatical type from prefixes and length
func arabicPattern(word string) (models.GrammaticalType, float64) {
	switch {
	case strings.HasPrefix(word, "ال"):
		return models.TypeNoun, confidenceDefiniteNoun
	case strings.HasPrefix(word, "ي"), strings.HasPrefix(word, "ت"), strings.HasPrefix(word, "أ"):
		return models.TypeVerb, confidenceVerbPrefix
	case utf8.RuneCountInString(word) <= 3:
		return models.TypeParticle, confidencePattern
	default:
		return models.TypeNoun, confidencePattern
	}
}

// isArabic reports whether every rune lies in the Arabic block
func isArabic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r < 0x0600 || r > 0x06FF {
			return false
		}
	}
	return true
}

// AnalyzeSentence tokenizes text and analyzes each word once
func (a *Analyzer) AnalyzeSentence(text string) models.AnalyzedSentence {
	tokens := Tokenize(text)

	sentence := models.AnalyzedSentence{
		Text:       text,
		Tokens:     tokens,
		Words:      make([]models.WordAnalysis, 0, len(tokens)),
		Categories: []string{},
	}

	types := make([]string, 0, len(tokens))
	seen := make(map[string]bool)
	total := 0.0

	for _, tok := range tokens {
		wa := a.AnalyzeWord(tok)
		sentence.Words = append(sentence.Words, wa)
		types = append(types, string(wa.Type))
		total += wa.Confidence
		if !seen[wa.Category] {
			seen[wa.Category] = true
			sentence.Categories = append(sentence.Categories, wa.Category)
		}
	}

	sentence.Structure = strings.Join(types, "-")
	if len(tokens) > 0 {
		sentence.Confidence = total / float64(len(tokens))
	}

	a.logger.Debug("sentence analyzed",
		zap.Int("tokens", len(tokens)),
		zap.String("structure", sentence.Structure),
		zap.Float64("confidence", sentence.Confidence))

	return sentence
}

// IsKeyword reports whether an analyzed word counts as a keyword:
// a noun, a verb or any categorized word, above the keyword threshold
func (a *Analyzer) IsKeyword(w models.WordAnalysis) bool {
	content := w.Type == models.TypeNoun || w.Type == models.TypeVerb || w.Category != models.CategoryGeneral
	return content && w.Confidence > a.config.KeywordThreshold
}

// IsEntity reports whether an analyzed word is a categorized word above the entity threshold
func (a *Analyzer) IsEntity(w models.WordAnalysis) bool {
	return w.Category != models.CategoryGeneral && w.Confidence > a.config.EntityThreshold
}

// Keywords returns the keywords of an analyzed sentence in order
func (a *Analyzer) Keywords(sentence models.AnalyzedSentence) []string {
	keywords := []string{}
	for _, w := range sentence.Words {
		if a.IsKeyword(w) {
			keywords = append(keywords, w.Word)
		}
	}
	return keywords
}

// Entities returns the entities of an analyzed sentence in order
func (a *Analyzer) Entities(sentence models.AnalyzedSentence) []models.Entity {
	entities := []models.Entity{}
	for _, w := range sentence.Words {
		if a.IsEntity(w) {
			entities = append(entities, models.Entity{Word: w.Word, Category: w.Category})
		}
	}
	return entities
}

// ExtractKeywords analyzes text and returns its keywords
func (a *Analyzer) ExtractKeywords(text string) []string {
	return a.Keywords(a.AnalyzeSentence(text))
}

// ExtractEntities analyzes text and returns its entities
func (a *Analyzer) ExtractEntities(text string) []models.Entity {
	return a.Entities(a.AnalyzeSentence(text))
}

// Lexicon returns the lexicon the analyzer reads from
func (a *Analyzer) Lexicon() *lexicon.Lexicon {
	return a.lexicon
}
