package models

import "time"

// GrammaticalType is the coarse part-of-speech tag carried by lexicon entries
type GrammaticalType string

const (
	TypeNoun      GrammaticalType = "noun"
	TypeVerb      GrammaticalType = "verb"
	TypeParticle  GrammaticalType = "particle"
	TypePronoun   GrammaticalType = "pronoun"
	TypeAdjective GrammaticalType = "adjective"
	TypeUnknown   GrammaticalType = "unknown"

	// Function-word types used by the seed lexicon
	TypeGreeting  GrammaticalType = "greeting"
	TypeQuestion  GrammaticalType = "question"
	TypeGratitude GrammaticalType = "gratitude"
)

// Valid reports whether t is one of the known grammatical types
func (t GrammaticalType) Valid() bool {
	switch t {
	case TypeNoun, TypeVerb, TypeParticle, TypePronoun, TypeAdjective, TypeUnknown,
		TypeGreeting, TypeQuestion, TypeGratitude:
		return true
	}
	return false
}

// CategoryGeneral is assigned to words that were not found in the lexicon
const CategoryGeneral = "general"

// LexiconEntry is a single known word
type LexiconEntry struct {
	Word       string          `json:"word"`
	Type       GrammaticalType `json:"type"`
	Definition string          `json:"definition"`
	Category   string          `json:"category"`
	Root       string          `json:"root,omitempty"`
	Vector     []float64       `json:"vector,omitempty"` // Derived from Word, never persisted by seeds
	UsageCount int64           `json:"usage_count"`
}

// KnowledgeFact is a subject/predicate/object triple
type KnowledgeFact struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"` // Always within [0,1]
}

// FactSource tells where a scored fact came from
type FactSource string

const (
	SourceKnowledgeGraph FactSource = "knowledge_graph"
	SourceInferred       FactSource = "inferred"
)

// ScoredFact is a fact returned by a knowledge query
type ScoredFact struct {
	KnowledgeFact
	Score  float64    `json:"score"`         // Fact confidence, scaled by similarity when inferred
	Source FactSource `json:"source"`        // knowledge_graph or inferred
	Via    string     `json:"via,omitempty"` // Similar subject the fact was propagated from
}

// AnalysisSource tells which stage of word analysis produced a result
type AnalysisSource string

const (
	AnalysisLexicon    AnalysisSource = "lexicon"
	AnalysisSimilarity AnalysisSource = "similarity"
	AnalysisPattern    AnalysisSource = "pattern"
	AnalysisDefault    AnalysisSource = "default"
)

// WordAnalysis is the outcome of analyzing a single token
type WordAnalysis struct {
	Word       string          `json:"word"`
	Type       GrammaticalType `json:"type"`
	Category   string          `json:"category"`
	Confidence float64         `json:"confidence"`
	Source     AnalysisSource  `json:"source"`
	Matched    string          `json:"matched,omitempty"` // Lexicon word used by the similarity stage
}

// AnalyzedSentence is the analysis of a whole utterance
type AnalyzedSentence struct {
	Text       string         `json:"text"`
	Tokens     []string       `json:"tokens"`
	Words      []WordAnalysis `json:"words"`
	Structure  string         `json:"structure"`  // Grammatical types joined by "-"
	Confidence float64        `json:"confidence"` // Mean word confidence, 0 when empty
	Categories []string       `json:"categories"` // Distinct categories in first-seen order
}

// Intent is the coarse classification of an utterance
type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentQuestionIdentity Intent = "question_identity"
	IntentQuestionCreator  Intent = "question_creator"
	IntentQuestionHow      Intent = "question_how"
	IntentQuestionWhat     Intent = "question_what"
	IntentStatement        Intent = "statement"
	IntentRequest          Intent = "request"
	IntentGratitude        Intent = "gratitude"
)

// AllIntents lists every intent in a fixed order
var AllIntents = []Intent{
	IntentGreeting,
	IntentQuestionIdentity,
	IntentQuestionCreator,
	IntentQuestionHow,
	IntentQuestionWhat,
	IntentStatement,
	IntentRequest,
	IntentGratitude,
}

// Valid reports whether i belongs to the closed intent set
func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// IntentScores maps every intent to its accumulated score
type IntentScores map[Intent]float64

// Entity is a word with a domain category
type Entity struct {
	Word     string `json:"word"`
	Category string `json:"category"`
}

// IntentInference is the result of intent scoring
type IntentInference struct {
	Intent     Intent           `json:"intent"`
	Confidence float64          `json:"confidence"`
	Keywords   []string         `json:"keywords"`
	Entities   []Entity         `json:"entities"`
	Scores     IntentScores     `json:"scores"`
	Analysis   AnalyzedSentence `json:"analysis"`
}

// KnowledgeAnswer is an answer assembled from pooled facts
type KnowledgeAnswer struct {
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	Source     string       `json:"source"`
	Facts      []ScoredFact `json:"facts"`
}

// ResponseMethod tells how a response was produced
type ResponseMethod string

const (
	MethodKnowledge ResponseMethod = "knowledge_inference"
	MethodTemplate  ResponseMethod = "template_generation"
	MethodFallback  ResponseMethod = "fallback"
)

// Response is what the engine returns for one utterance
type Response struct {
	Text             string         `json:"text"`      // Final text after detail level and fluency
	Generated        string         `json:"generated"` // Text before post-processing
	Confidence       float64        `json:"confidence"`
	Method           ResponseMethod `json:"method"`
	Intent           Intent         `json:"intent"`
	IntentConfidence float64        `json:"intent_confidence"`
	Keywords         []string       `json:"keywords"`
	Entities         []Entity       `json:"entities"`
	Clarity          float64        `json:"clarity,omitempty"`
	Fluency          float64        `json:"fluency,omitempty"`
}

// ConversationTurn is one recorded input/output exchange
type ConversationTurn struct {
	ID         string         `json:"id"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	Intent     Intent         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Method     ResponseMethod `json:"method"`
	Keywords   []string       `json:"keywords"`
	Scores     IntentScores   `json:"scores,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
