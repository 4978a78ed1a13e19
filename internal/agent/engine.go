package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/baserah/baserah/internal/fluency"
	"github.com/baserah/baserah/internal/knowledge"
	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/memory"
	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
)

// FallbackText is returned when the pipeline cannot produce a response
const FallbackText = "عذراً، لم أتمكن من معالجة الرسالة."

// Components toggles optional pipeline stages
type Components struct {
	Knowledge bool `mapstructure:"knowledge" json:"knowledge"`
	Fluency   bool `mapstructure:"fluency" json:"fluency"`
	History   bool `mapstructure:"history" json:"history"`
}

// Settings control post-processing
type Settings struct {
	WritingStyle fluency.WritingStyle `mapstructure:"writing_style" json:"writing_style"`
	DetailLevel  fluency.DetailLevel  `mapstructure:"detail_level" json:"detail_level"`
	Components   Components           `mapstructure:"components" json:"components"`
}

// DefaultSettings returns friendly, medium-detail output with every stage on
func DefaultSettings() *Settings {
	return &Settings{
		WritingStyle: fluency.StyleFriendly,
		DetailLevel:  fluency.DetailMedium,
		Components:   Components{Knowledge: true, Fluency: true, History: true},
	}
}

// Normalize canonicalizes the style and detail level names
func (s *Settings) Normalize() {
	if style, err := fluency.ParseStyle(string(s.WritingStyle)); err == nil {
		s.WritingStyle = style
	}
	if level, err := fluency.ParseDetailLevel(string(s.DetailLevel)); err == nil {
		s.DetailLevel = level
	}
}

// Validate checks the style and detail level names
func (s *Settings) Validate() error {
	if _, err := fluency.ParseStyle(string(s.WritingStyle)); err != nil {
		return err
	}
	if _, err := fluency.ParseDetailLevel(string(s.DetailLevel)); err != nil {
		return err
	}
	return nil
}

// Engine is the conversational entry point: generate, shape the detail
// level, polish the text and count the outcome
type Engine struct {
	lexicon   *lexicon.Lexicon
	knowledge *knowledge.Store
	generator *Generator
	enhancer  *fluency.Enhancer
	history   *memory.Service

	settings     Settings
	intentCounts map[models.Intent]int
	turns        int64
	logger       *zap.Logger
	mu           sync.RWMutex
}

// EngineDeps are the collaborators an Engine reports on and drives
type EngineDeps struct {
	Lexicon   *lexicon.Lexicon
	Knowledge *knowledge.Store
	Generator *Generator
	Enhancer  *fluency.Enhancer
	History   *memory.Service // May be nil
}

// NewEngine creates an engine
func NewEngine(deps EngineDeps, settings *Settings, logger *zap.Logger) (*Engine, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("engine requires a generator")
	}
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	normalized := *settings
	normalized.Normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Enhancer == nil {
		deps.Enhancer = fluency.NewEnhancer(logger)
	}

	return &Engine{
		lexicon:      deps.Lexicon,
		knowledge:    deps.Knowledge,
		generator:    deps.Generator,
		enhancer:     deps.Enhancer,
		history:      deps.History,
		settings:     normalized,
		intentCounts: make(map[models.Intent]int),
		logger:       logger,
	}, nil
}

// Fallback returns the last-resort response
func Fallback() *models.Response {
	return &models.Response{
		Text:      FallbackText,
		Generated: FallbackText,
		Method:    models.MethodFallback,
		Intent:    models.IntentStatement,
		Keywords:  []string{},
		Entities:  []models.Entity{},
	}
}

// Respond runs one turn. It only fails when ctx is already done; any panic
// inside the pipeline yields the fallback response.
func (e *Engine) Respond(ctx context.Context, input string) (resp *models.Response, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("response pipeline panicked",
				zap.Any("panic", r),
				zap.String("input", input))
			resp, err = Fallback(), nil
		}
	}()

	settings := e.Settings()

	out := e.generator.generate(ctx, input, settings.Components.Knowledge, settings.Components.History)
	text := fluency.ApplyDetail(out.Text, settings.DetailLevel)

	if settings.Components.Fluency {
		res := e.enhancer.Enhance(text, settings.WritingStyle)
		text = res.Enhanced
		out.Clarity = res.Clarity
		out.Fluency = res.Fluency
	}
	out.Text = text

	e.mu.Lock()
	e.intentCounts[out.Intent]++
	e.turns++
	e.mu.Unlock()

	return &out, nil
}

// Settings returns the current settings
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings replaces the post-processing settings
func (e *Engine) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.Normalize()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
	return nil
}

// History returns the recorded turns, oldest first
func (e *Engine) History(n int) []models.ConversationTurn {
	if e.history == nil {
		return nil
	}
	return e.history.Recent(n)
}

// ClearHistory drops the in-memory turns
func (e *Engine) ClearHistory() {
	if e.history != nil {
		e.history.Clear()
	}
}

// WordUsage is how often a lexicon word was looked up
type WordUsage struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// Stats summarizes the engine state
type Stats struct {
	LexiconSize   int                   `json:"lexicon_size"`
	Categories    []string              `json:"categories"`
	FactSubjects  int                   `json:"fact_subjects"`
	Facts         int                   `json:"facts"`
	Turns         int64                 `json:"turns"`
	HistoryLength int                   `json:"history_length"`
	IntentCounts  map[models.Intent]int `json:"intent_counts"`
	TopWords      []WordUsage           `json:"top_words"`
	Settings      Settings              `json:"settings"`
	History       *memory.Stats         `json:"history,omitempty"`
}

// Stats reports lexicon, knowledge and conversation statistics
func (e *Engine) Stats(ctx context.Context) *Stats {
	e.mu.RLock()
	stats := &Stats{
		Turns:        e.turns,
		IntentCounts: make(map[models.Intent]int, len(e.intentCounts)),
		Settings:     e.settings,
	}
	for intent, n := range e.intentCounts {
		stats.IntentCounts[intent] = n
	}
	e.mu.RUnlock()

	if e.lexicon != nil {
		stats.LexiconSize = e.lexicon.Len()
		stats.Categories = e.lexicon.Categories()
		for _, entry := range e.lexicon.TopUsed(5) {
			if entry.UsageCount == 0 {
				break
			}
			stats.TopWords = append(stats.TopWords, WordUsage{Word: entry.Word, Count: entry.UsageCount})
		}
	}
	if e.knowledge != nil {
		stats.FactSubjects = len(e.knowledge.Subjects())
		stats.Facts = e.knowledge.Len()
	}
	if e.history != nil {
		stats.History = e.history.GetStats(ctx)
		stats.HistoryLength = stats.History.Turns
	}

	return stats
}

// Analyze exposes intent inference without generating a response
func (e *Engine) Analyze(text string) models.IntentInference {
	return e.generator.scorer.InferIntent(text)
}

// Knowledge returns the fact store
func (e *Engine) Knowledge() *knowledge.Store {
	return e.knowledge
}
