package agent

import (
	"context"
	"slices"

	"github.com/baserah/baserah/internal/inference"
	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
)

// Recorder stores conversation turns
type Recorder interface {
	Record(ctx context.Context, turn models.ConversationTurn) models.ConversationTurn
}

// GeneratorConfig holds response generation settings
type GeneratorConfig struct {
	KnowledgeThreshold float64             `mapstructure:"knowledge_threshold"` // Answers must exceed this confidence
	KnowledgeIntents   []models.Intent     `mapstructure:"knowledge_intents"`   // Intents allowed to answer from facts
	TemplateConfidence float64             `mapstructure:"template_confidence"`
	Seed               int64               `mapstructure:"seed"` // Zero seeds from the clock
	Templates          map[string][]string `mapstructure:"templates"`
	KeywordTemplates   map[string][]string `mapstructure:"keyword_templates"`
}

// DefaultGeneratorConfig returns the default generation settings
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		KnowledgeThreshold: 0.5,
		KnowledgeIntents: []models.Intent{
			models.IntentQuestionIdentity,
			models.IntentQuestionCreator,
			models.IntentQuestionHow,
			models.IntentQuestionWhat,
		},
		TemplateConfidence: 0.7,
	}
}

// Generator turns an utterance into a response, answering from facts when it
// can and from templates otherwise
type Generator struct {
	scorer    *inference.Scorer
	reasoner  *inference.Reasoner // nil disables knowledge answers
	history   Recorder            // nil disables recording
	templates *Templates
	picker    Picker
	config    *GeneratorConfig
	logger    *zap.Logger
}

// GeneratorOption customizes a Generator
type GeneratorOption func(*Generator)

// WithPicker sets the template picker
func WithPicker(p Picker) GeneratorOption {
	return func(g *Generator) { g.picker = p }
}

// WithReasoner enables knowledge answers
func WithReasoner(r *inference.Reasoner) GeneratorOption {
	return func(g *Generator) { g.reasoner = r }
}

// WithRecorder records every generated turn
func WithRecorder(r Recorder) GeneratorOption {
	return func(g *Generator) { g.history = r }
}

// WithTemplates replaces the template set
func WithTemplates(t *Templates) GeneratorOption {
	return func(g *Generator) { g.templates = t }
}

// NewGenerator creates a generator over scorer
func NewGenerator(scorer *inference.Scorer, config *GeneratorConfig, logger *zap.Logger, opts ...GeneratorOption) *Generator {
	if config == nil {
		config = DefaultGeneratorConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Generator{
		scorer: scorer,
		config: config,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.templates == nil {
		g.templates = DefaultTemplates()
		g.templates.Override(config.Templates, config.KeywordTemplates)
	}
	if g.picker == nil {
		g.picker = NewRandPicker(config.Seed)
	}

	return g
}

// Generate infers the intent of text and produces a response
func (g *Generator) Generate(ctx context.Context, text string) models.Response {
	return g.generate(ctx, text, true, true)
}

func (g *Generator) generate(ctx context.Context, text string, useKnowledge, record bool) models.Response {
	inf := g.scorer.InferIntent(text)

	resp := models.Response{
		Intent:           inf.Intent,
		IntentConfidence: inf.Confidence,
		Keywords:         inf.Keywords,
		Entities:         inf.Entities,
	}

	var answer *models.KnowledgeAnswer
	if useKnowledge {
		answer = g.knowledgeAnswer(inf)
	}
	if answer != nil {
		resp.Text = answer.Text
		resp.Confidence = answer.Confidence
		resp.Method = models.MethodKnowledge
	} else {
		resp.Text = g.fromTemplate(inf.Intent, inf.Keywords)
		resp.Confidence = g.config.TemplateConfidence
		resp.Method = models.MethodTemplate
	}
	resp.Generated = resp.Text

	g.logger.Debug("response generated",
		zap.String("intent", string(resp.Intent)),
		zap.String("method", string(resp.Method)),
		zap.Float64("confidence", resp.Confidence))

	if record && g.history != nil {
		g.history.Record(ctx, models.ConversationTurn{
			Input:      text,
			Output:     resp.Text,
			Intent:     resp.Intent,
			Confidence: resp.Confidence,
			Method:     resp.Method,
			Keywords:   resp.Keywords,
			Scores:     inf.Scores,
		})
	}

	return resp
}

func (g *Generator) knowledgeAnswer(inf models.IntentInference) *models.KnowledgeAnswer {
	if g.reasoner == nil || !slices.Contains(g.config.KnowledgeIntents, inf.Intent) {
		return nil
	}
	answer := g.reasoner.InferResponse(inf.Intent, inf.Keywords, inf.Entities)
	if answer == nil || answer.Confidence <= g.config.KnowledgeThreshold {
		return nil
	}
	return answer
}

func (g *Generator) fromTemplate(intent models.Intent, keywords []string) string {
	candidates := g.templates.Candidates(intent, keywords)
	if len(candidates) == 0 {
		return ""
	}
	return Fill(candidates[g.picker.Pick(len(candidates))], keywords)
}
