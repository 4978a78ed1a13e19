package knowledge

import (
	"fmt"
	"math"
	"sync"

	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
)

// Config holds knowledge store settings
type Config struct {
	PropagationThreshold float64 `mapstructure:"propagation_threshold"` // Similarity a lexicon neighbour needs to lend its facts
}

// DefaultConfig returns the default knowledge configuration
func DefaultConfig() *Config {
	return &Config{PropagationThreshold: 0.6}
}

// Store is a subject-indexed fact store. Queries also pull facts from
// lexicon words that are similar to the subject.
type Store struct {
	lexicon  *lexicon.Lexicon
	facts    map[string][]models.KnowledgeFact
	subjects []string
	count    int
	config   *Config
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewStore creates an empty store that propagates through lex
func NewStore(lex *lexicon.Lexicon, config *Config, logger *zap.Logger) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		lexicon: lex,
		facts:   make(map[string][]models.KnowledgeFact),
		config:  config,
		logger:  logger,
	}
}

// AddKnowledge appends a fact under subject. Confidence is clamped to [0,1].
func (s *Store) AddKnowledge(subject, predicate, object string, confidence float64) (models.KnowledgeFact, error) {
	fact := models.KnowledgeFact{
		Subject:    lexicon.Normalize(subject),
		Predicate:  predicate,
		Object:     object,
		Confidence: clamp(confidence),
	}
	if err := s.Add(fact); err != nil {
		return models.KnowledgeFact{}, err
	}
	return fact, nil
}

// Add appends a prepared fact
func (s *Store) Add(fact models.KnowledgeFact) error {
	fact.Subject = lexicon.Normalize(fact.Subject)
	if fact.Subject == "" {
		return fmt.Errorf("fact has empty subject")
	}
	if fact.Object == "" {
		return fmt.Errorf("fact for %q has empty object", fact.Subject)
	}
	fact.Confidence = clamp(fact.Confidence)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.facts[fact.Subject]; !ok {
		s.subjects = append(s.subjects, fact.Subject)
	}
	s.facts[fact.Subject] = append(s.facts[fact.Subject], fact)
	s.count++
	return nil
}

// Facts returns the direct facts for subject in insertion order
func (s *Store) Facts(subject string) []models.KnowledgeFact {
	subject = lexicon.Normalize(subject)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.KnowledgeFact(nil), s.facts[subject]...)
}

// Query returns the direct facts for subject followed by facts inherited
// from similar lexicon words, scaled by their similarity
func (s *Store) Query(subject string) []models.ScoredFact {
	subject = lexicon.Normalize(subject)
	results := []models.ScoredFact{}

	for _, f := range s.Facts(subject) {
		results = append(results, models.ScoredFact{
			KnowledgeFact: f,
			Score:         f.Confidence,
			Source:        models.SourceKnowledgeGraph,
		})
	}

	if s.lexicon == nil {
		return results
	}

	for _, m := range s.lexicon.FindSimilar(subject, s.config.PropagationThreshold) {
		for _, f := range s.Facts(m.Word) {
			results = append(results, models.ScoredFact{
				KnowledgeFact: f,
				Score:         f.Confidence * m.Similarity,
				Source:        models.SourceInferred,
				Via:           m.Word,
			})
		}
	}

	s.logger.Debug("knowledge query",
		zap.String("subject", subject),
		zap.Int("results", len(results)))

	return results
}

// Subjects returns every subject with at least one fact, in first-seen order
func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.subjects...)
}

// All returns every fact grouped by subject
func (s *Store) All() []models.KnowledgeFact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.KnowledgeFact, 0, s.count)
	for _, subject := range s.subjects {
		all = append(all, s.facts[subject]...)
	}
	return all
}

// Len returns the total number of facts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
