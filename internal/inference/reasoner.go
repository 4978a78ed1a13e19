package inference

import (
	"sort"
	"strings"

	"github.com/baserah/baserah/internal/knowledge"
	"github.com/baserah/baserah/internal/models"
	"go.uber.org/zap"
)

// SourceKnowledgeInference labels answers assembled from the fact store
const SourceKnowledgeInference = "knowledge_inference"

// Reasoner builds answers from facts about the words of an utterance
type Reasoner struct {
	store    *knowledge.Store
	topFacts int
	logger   *zap.Logger
}

// NewReasoner creates a reasoner over store
func NewReasoner(store *knowledge.Store, config *Config, logger *zap.Logger) *Reasoner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	top := config.TopFacts
	if top <= 0 {
		top = 3
	}
	return &Reasoner{store: store, topFacts: top, logger: logger}
}

// InferResponse pools facts for every keyword and entity and joins the best
// ones. It returns nil when no word has any fact.
func (r *Reasoner) InferResponse(intent models.Intent, keywords []string, entities []models.Entity) *models.KnowledgeAnswer {
	words := make([]string, 0, len(keywords)+len(entities))
	seen := make(map[string]bool)
	for _, k := range keywords {
		if !seen[k] {
			seen[k] = true
			words = append(words, k)
		}
	}
	for _, e := range entities {
		if !seen[e.Word] {
			seen[e.Word] = true
			words = append(words, e.Word)
		}
	}

	var pooled []models.ScoredFact
	for _, w := range words {
		pooled = append(pooled, r.store.Query(w)...)
	}
	if len(pooled) == 0 {
		return nil
	}

	sort.SliceStable(pooled, func(i, j int) bool {
		return pooled[i].Score > pooled[j].Score
	})

	// the same object reached through several words counts once
	top := make([]models.ScoredFact, 0, r.topFacts)
	objects := make(map[string]bool)
	for _, f := range pooled {
		if objects[f.Object] {
			continue
		}
		objects[f.Object] = true
		top = append(top, f)
		if len(top) == r.topFacts {
			break
		}
	}

	texts := make([]string, len(top))
	total := 0.0
	for i, f := range top {
		texts[i] = f.Object
		total += f.Score
	}

	answer := &models.KnowledgeAnswer{
		Text:       strings.Join(texts, ". "),
		Confidence: total / float64(len(top)),
		Source:     SourceKnowledgeInference,
		Facts:      top,
	}

	r.logger.Debug("knowledge answer",
		zap.String("intent", string(intent)),
		zap.Int("pooled", len(pooled)),
		zap.Float64("confidence", answer.Confidence))

	return answer
}
