package inference

import (
	"strings"

	"github.com/baserah/baserah/internal/analyzer"
	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
)

// CategoryRule adds Weight to Intent for every word in Category
type CategoryRule struct {
	Category string        `mapstructure:"category" yaml:"category"`
	Intent   models.Intent `mapstructure:"intent" yaml:"intent"`
	Weight   float64       `mapstructure:"weight" yaml:"weight"`
}

// InterrogativeRule adds Weight to Intent when a question word is Word
type InterrogativeRule struct {
	Word   string        `mapstructure:"word" yaml:"word"`
	Intent models.Intent `mapstructure:"intent" yaml:"intent"`
	Weight float64       `mapstructure:"weight" yaml:"weight"`
}

// Config holds intent scoring rules and knowledge pooling settings
type Config struct {
	KeywordRules           []CategoryRule      `mapstructure:"keyword_rules"`
	EntityRules            []CategoryRule      `mapstructure:"entity_rules"`
	Interrogatives         []InterrogativeRule `mapstructure:"interrogatives"`
	QuestionCategory       string              `mapstructure:"question_category"`
	QuestionMarkBoost      float64             `mapstructure:"question_mark_boost"`
	QuestionStructureBoost float64             `mapstructure:"question_structure_boost"`
	TopFacts               int                 `mapstructure:"top_facts"`
}

// DefaultConfig returns the default scoring rules
func DefaultConfig() *Config {
	return &Config{
		KeywordRules: []CategoryRule{
			{Category: "greeting", Intent: models.IntentGreeting, Weight: 1.0},
			{Category: "gratitude", Intent: models.IntentGratitude, Weight: 1.0},
			{Category: "system", Intent: models.IntentQuestionIdentity, Weight: 0.5},
			{Category: "creator", Intent: models.IntentQuestionCreator, Weight: 1.0},
			{Category: "request", Intent: models.IntentRequest, Weight: 1.0},
		},
		EntityRules: []CategoryRule{
			{Category: "system", Intent: models.IntentQuestionIdentity, Weight: 0.6},
			{Category: "creator", Intent: models.IntentQuestionCreator, Weight: 0.6},
		},
		Interrogatives: []InterrogativeRule{
			{Word: "من", Intent: models.IntentQuestionIdentity, Weight: 0.8},
			{Word: "ما", Intent: models.IntentQuestionWhat, Weight: 0.8},
			{Word: "كيف", Intent: models.IntentQuestionHow, Weight: 0.8},
			{Word: "ماذا", Intent: models.IntentQuestionWhat, Weight: 0.8},
		},
		QuestionCategory:       "question",
		QuestionMarkBoost:      0.3,
		QuestionStructureBoost: 0.4,
		TopFacts:               3,
	}
}

// Scorer picks an intent for an utterance from accumulated rule weights
type Scorer struct {
	analyzer       *analyzer.Analyzer
	config         *Config
	keywordRules   map[string][]CategoryRule
	entityRules    map[string][]CategoryRule
	interrogatives map[string][]InterrogativeRule
	logger         *zap.Logger
}

// NewScorer creates a scorer over the given analyzer
func NewScorer(a *analyzer.Analyzer, config *Config, logger *zap.Logger) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scorer{
		analyzer:       a,
		config:         config,
		keywordRules:   indexRules(config.KeywordRules),
		entityRules:    indexRules(config.EntityRules),
		interrogatives: make(map[string][]InterrogativeRule),
		logger:         logger,
	}
	for _, r := range config.Interrogatives {
		s.interrogatives[r.Word] = append(s.interrogatives[r.Word], r)
	}
	return s
}

func indexRules(rules []CategoryRule) map[string][]CategoryRule {
	idx := make(map[string][]CategoryRule)
	for _, r := range rules {
		idx[r.Category] = append(idx[r.Category], r)
	}
	return idx
}

// InferIntent analyzes text once and classifies it
func (s *Scorer) InferIntent(text string) models.IntentInference {
	analysis := s.analyzer.AnalyzeSentence(text)
	scores := s.Score(text, analysis)
	intent, confidence := Select(scores)

	s.logger.Debug("intent inferred",
		zap.String("intent", string(intent)),
		zap.Float64("confidence", confidence))

	return models.IntentInference{
		Intent:     intent,
		Confidence: confidence,
		Keywords:   s.analyzer.Keywords(analysis),
		Entities:   s.analyzer.Entities(analysis),
		Scores:     scores,
		Analysis:   analysis,
	}
}

// Score accumulates raw per-intent scores for an analyzed sentence
func (s *Scorer) Score(text string, analysis models.AnalyzedSentence) models.IntentScores {
	scores := make(models.IntentScores, len(models.AllIntents))
	for _, intent := range models.AllIntents {
		scores[intent] = 0
	}

	for _, w := range analysis.Words {
		// Keyword and interrogative rules need an exact lexicon hit; a
		// spelling neighbour only lends its category to entity rules
		if w.Source == models.AnalysisLexicon && s.analyzer.IsKeyword(w) {
			for _, r := range s.keywordRules[w.Category] {
				scores[r.Intent] += r.Weight
			}
			if w.Category == s.config.QuestionCategory {
				for _, r := range s.interrogatives[w.Word] {
					scores[r.Intent] += r.Weight
				}
			}
		}
		if s.analyzer.IsEntity(w) {
			for _, r := range s.entityRules[w.Category] {
				scores[r.Intent] += r.Weight
			}
		}
	}

	if strings.ContainsAny(text, "؟?") {
		scores[models.IntentQuestionWhat] += s.config.QuestionMarkBoost
	}
	if strings.HasPrefix(analysis.Structure, string(models.TypeQuestion)) {
		scores[models.IntentQuestionWhat] += s.config.QuestionStructureBoost
	}

	return scores
}

// Select returns the intent with the strictly greatest score. A tie at the
// top or no positive score yields the statement intent.
func Select(scores models.IntentScores) (models.Intent, float64) {
	best := models.IntentStatement
	top := 0.0
	tied := false

	for _, intent := range models.AllIntents {
		score := scores[intent]
		switch {
		case score > top:
			best, top, tied = intent, score, false
		case score == top && top > 0:
			tied = true
		}
	}

	if tied || top <= 0 {
		best = models.IntentStatement
	}
	if top > 1 {
		top = 1
	}
	return best, top
}
