package knowledge

import (
	"math"
	"testing"

	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/models"
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

func TestAddKnowledgeClampsConfidence(t *testing.T) {
	store := NewStore(lexicon.New(nil, nil), nil, nil)

	tests := []struct {
		in, want float64
	}{
		{1.5, 1},
		{-0.2, 0},
		{math.NaN(), 0},
		{0.42, 0.42},
	}
	for _, tt := range tests {
		fact, err := store.AddKnowledge("بصيرة", "هو", "نظام", tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, fact.Confidence)
	}
	assert.Equal(t, 4, store.Len())
}

func TestAddRejectsIncompleteFacts(t *testing.T) {
	store := NewStore(nil, nil, nil)

	_, err := store.AddKnowledge("", "هو", "نظام", 1)
	assert.Error(t, err)
	_, err = store.AddKnowledge("بصيرة", "هو", "", 1)
	assert.Error(t, err)
	assert.Zero(t, store.Len())
}

func TestFactsKeepInsertionOrder(t *testing.T) {
	store := NewStore(nil, nil, nil)
	for _, obj := range []string{"أول", "ثاني", "ثالث"} {
		_, err := store.AddKnowledge("نظام", "يتكون_من", obj, 0.9)
		require.NoError(t, err)
	}
	_, err := store.AddKnowledge("ذكاء", "يأتي_من", "تكامل", 0.9)
	require.NoError(t, err)

	facts := store.Facts("نظام")
	require.Len(t, facts, 3)
	assert.Equal(t, "أول", facts[0].Object)
	assert.Equal(t, "ثالث", facts[2].Object)
	assert.Equal(t, []string{"نظام", "ذكاء"}, store.Subjects())
	assert.Len(t, store.All(), 4)
}

func TestQueryDirectFacts(t *testing.T) {
	store := NewStore(lexicon.New(nil, nil), nil, nil)
	_, err := store.AddKnowledge("بصيرة", "هو", "نظام ذكاء اصطناعي", 1)
	require.NoError(t, err)

	results := store.Query("بصيرة")
	require.Len(t, results, 1)
	assert.Equal(t, models.SourceKnowledgeGraph, results[0].Source)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Empty(t, results[0].Via)
}

func TestQueryPropagatesThroughSimilarWords(t *testing.T) {
	vecs := stubVectorizer{
		"subject":  {1, 0},
		"neighbor": {0.8, 0.6},
		"stranger": {0, 1},
	}
	lex := lexicon.New(vecs, nil)
	for _, w := range []string{"neighbor", "stranger"} {
		_, err := lex.AddEntry(w, models.TypeNoun, "", "system", "")
		require.NoError(t, err)
	}

	store := NewStore(lex, nil, nil)
	_, err := store.AddKnowledge("neighbor", "is", "a close word", 1.0)
	require.NoError(t, err)
	_, err = store.AddKnowledge("neighbor", "has", "half confidence", 0.5)
	require.NoError(t, err)
	_, err = store.AddKnowledge("stranger", "is", "unrelated", 1.0)
	require.NoError(t, err)

	results := store.Query("subject")
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, models.SourceInferred, r.Source)
		assert.Equal(t, "neighbor", r.Via)
	}
	assert.InDelta(t, 0.8, results[0].Score, 1e-3)
	assert.InDelta(t, 0.4, results[1].Score, 1e-3)
	// the stored fact keeps its own confidence
	assert.Equal(t, 1.0, results[0].Confidence)
}

func TestQueryDirectBeforeInferred(t *testing.T) {
	vecs := stubVectorizer{
		"a": {1, 0},
		"b": {1, 0.1},
	}
	lex := lexicon.New(vecs, nil)
	for _, w := range []string{"a", "b"} {
		_, err := lex.AddEntry(w, models.TypeNoun, "", "", "")
		require.NoError(t, err)
	}
	store := NewStore(lex, nil, nil)
	_, err := store.AddKnowledge("b", "p", "from b", 1)
	require.NoError(t, err)
	_, err = store.AddKnowledge("a", "p", "from a", 0.3)
	require.NoError(t, err)

	results := store.Query("a")
	require.Len(t, results, 2)
	assert.Equal(t, "from a", results[0].Object)
	assert.Equal(t, models.SourceKnowledgeGraph, results[0].Source)
	assert.Equal(t, "from b", results[1].Object)
}

func TestQueryUnknownSubject(t *testing.T) {
	store := NewStore(lexicon.New(nil, nil), nil, nil)
	assert.Empty(t, store.Query("لا شيء"))
}
