package analyzer

import (
	"testing"

	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVectorizer map[string][]float64

func (s stubVectorizer) Vector(word string) []float64 {
	if v, ok := s[word]; ok {
		return v
	}
	return []float64{0, 0}
}

func (s stubVectorizer) Dimensions() int { return 2 }

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	lex := lexicon.New(nil, nil)
	for _, e := range []struct {
		word     string
		typ      models.GrammaticalType
		category string
	}{
		{"مرحباً", models.TypeGreeting, "greeting"},
		{"من", models.TypeQuestion, "question"},
		{"ما", models.TypeQuestion, "question"},
		{"أنت", models.TypePronoun, "pronoun"},
		{"هو", models.TypePronoun, "pronoun"},
		{"بصيرة", models.TypeNoun, "system"},
		{"صنعك", models.TypeVerb, "creator"},
	} {
		_, err := lex.AddEntry(e.word, e.typ, "", e.category, "")
		require.NoError(t, err)
	}
	return New(lex, nil, nil)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"من أنت؟", []string{"من", "أنت"}},
		{"مرحباً، كيف الحال؟!", []string{"مرحباً", "كيف", "الحال"}},
		{"hello, world.", []string{"hello", "world"}},
		{"؟؟ ، .", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.in)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestAnalyzeWordLexiconHit(t *testing.T) {
	a := newTestAnalyzer(t)

	wa := a.AnalyzeWord("بصيرة")
	assert.Equal(t, models.TypeNoun, wa.Type)
	assert.Equal(t, "system", wa.Category)
	assert.Equal(t, 1.0, wa.Confidence)
	assert.Equal(t, models.AnalysisLexicon, wa.Source)

	entry, _ := a.Lexicon().Get("بصيرة")
	assert.EqualValues(t, 1, entry.UsageCount)
}

func TestAnalyzeWordPatterns(t *testing.T) {
	a := New(lexicon.New(nil, nil), nil, nil)

	tests := []struct {
		word       string
		typ        models.GrammaticalType
		confidence float64
		source     models.AnalysisSource
	}{
		{"الكتاب", models.TypeNoun, 0.7, models.AnalysisPattern},
		{"يكتب", models.TypeVerb, 0.6, models.AnalysisPattern},
		{"تكتب", models.TypeVerb, 0.6, models.AnalysisPattern},
		{"أكتب", models.TypeVerb, 0.6, models.AnalysisPattern},
		{"عن", models.TypeParticle, 0.5, models.AnalysisPattern},
		{"كتابة", models.TypeNoun, 0.5, models.AnalysisPattern},
		{"hello", models.TypeUnknown, 0.2, models.AnalysisDefault},
		{"كتاب1", models.TypeUnknown, 0.2, models.AnalysisDefault},
		{"", models.TypeUnknown, 0.2, models.AnalysisDefault},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			wa := a.AnalyzeWord(tt.word)
			assert.Equal(t, tt.typ, wa.Type)
			assert.Equal(t, tt.confidence, wa.Confidence)
			assert.Equal(t, tt.source, wa.Source)
			assert.Equal(t, models.CategoryGeneral, wa.Category)
		})
	}
}

func TestAnalyzeWordSimilarityStage(t *testing.T) {
	vecs := stubVectorizer{
		"known": {1, 0},
		"near":  {0.8, 0.6},
		"far":   {0, 1},
		"other": {0.6, 0.8},
		"east":  {0.9, 0.1},
	}
	lex := lexicon.New(vecs, nil)
	_, err := lex.AddEntry("known", models.TypeVerb, "", "action", "")
	require.NoError(t, err)
	_, err = lex.AddEntry("other", models.TypeNoun, "", "system", "")
	require.NoError(t, err)

	a := New(lex, nil, nil)

	wa := a.AnalyzeWord("east")
	assert.Equal(t, models.AnalysisSimilarity, wa.Source)
	assert.Equal(t, "known", wa.Matched)
	assert.Equal(t, models.TypeVerb, wa.Type)
	assert.Equal(t, "action", wa.Category)
	assert.InDelta(t, 0.994, wa.Confidence, 1e-3)

	wa = a.AnalyzeWord("near")
	assert.Equal(t, "other", wa.Matched)
	assert.Equal(t, models.TypeNoun, wa.Type)
	assert.Equal(t, "system", wa.Category)
	assert.InDelta(t, 0.96, wa.Confidence, 1e-3)

	wa = a.AnalyzeWord("far")
	assert.Equal(t, "other", wa.Matched)
	assert.InDelta(t, 0.8, wa.Confidence, 1e-3)
}

func TestAnalyzeWordConfidenceBounds(t *testing.T) {
	a := newTestAnalyzer(t)
	for _, w := range []string{"xyz", "قطة", "الجميل", "يذهب", "١٢٣", "😊", "مرحبتين"} {
		wa := a.AnalyzeWord(w)
		assert.GreaterOrEqual(t, wa.Confidence, 0.0, w)
		assert.LessOrEqual(t, wa.Confidence, 1.0, w)
	}
}

func TestAnalyzeSentence(t *testing.T) {
	a := newTestAnalyzer(t)

	s := a.AnalyzeSentence("من صنعك؟")
	assert.Equal(t, []string{"من", "صنعك"}, s.Tokens)
	assert.Equal(t, "question-verb", s.Structure)
	assert.Equal(t, 1.0, s.Confidence)
	assert.Equal(t, []string{"question", "creator"}, s.Categories)

	assert.Equal(t, []string{"من", "صنعك"}, a.Keywords(s))
	assert.Equal(t, []models.Entity{
		{Word: "من", Category: "question"},
		{Word: "صنعك", Category: "creator"},
	}, a.Entities(s))
}

func TestAnalyzeSentenceEmpty(t *testing.T) {
	a := newTestAnalyzer(t)

	s := a.AnalyzeSentence("؟!")
	assert.Empty(t, s.Tokens)
	assert.Empty(t, s.Words)
	assert.Equal(t, "", s.Structure)
	assert.Zero(t, s.Confidence)
	assert.Empty(t, a.Keywords(s))
	assert.Empty(t, a.Entities(s))
}

func TestKeywordAndEntityThresholds(t *testing.T) {
	a := New(lexicon.New(nil, nil), nil, nil)

	s := models.AnalyzedSentence{Words: []models.WordAnalysis{
		{Word: "noun", Type: models.TypeNoun, Category: models.CategoryGeneral, Confidence: 0.5},
		{Word: "weak", Type: models.TypeVerb, Category: models.CategoryGeneral, Confidence: 0.4},
		{Word: "particle", Type: models.TypeParticle, Category: models.CategoryGeneral, Confidence: 0.9},
		{Word: "cat", Type: models.TypeParticle, Category: "system", Confidence: 0.45},
		{Word: "entity", Type: models.TypePronoun, Category: "pronoun", Confidence: 0.6},
	}}

	assert.Equal(t, []string{"noun", "cat", "entity"}, a.Keywords(s))
	assert.Equal(t, []models.Entity{{Word: "entity", Category: "pronoun"}}, a.Entities(s))
}

func TestExtractHelpers(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.Equal(t, []string{"ما", "هو", "بصيرة"}, a.ExtractKeywords("ما هو بصيرة؟"))
	assert.Len(t, a.ExtractEntities("ما هو بصيرة؟"), 3)
}
