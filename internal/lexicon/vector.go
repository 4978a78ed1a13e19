package lexicon

import (
	"math"
)

// DefaultDimensions is the width of character vectors
const DefaultDimensions = 20

// cosineEpsilon keeps the denominator away from zero
const cosineEpsilon = 1e-4

// Vectorizer turns a word into a fixed-width feature vector
type Vectorizer interface {
	Vector(word string) []float64
	Dimensions() int
}

// CharVectorizer derives a vector from the code points of a word.
// Each rune contributes its scaled code to one slot and a sine of it to the next,
// so the result is closer to a spelling fingerprint than a semantic embedding.
type CharVectorizer struct {
	dimensions int
}

// NewCharVectorizer creates a character vectorizer with the given width
func NewCharVectorizer(dimensions int) *CharVectorizer {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &CharVectorizer{dimensions: dimensions}
}

// Vector computes the character vector for word
func (c *CharVectorizer) Vector(word string) []float64 {
	vec := make([]float64, c.dimensions)

	i := 0
	for _, r := range word {
		code := float64(r)
		vec[i%c.dimensions] += code / 100
		vec[(i+1)%c.dimensions] += math.Sin(code / 50)
		i++
	}

	return vec
}

// Dimensions returns the vector width
func (c *CharVectorizer) Dimensions() int {
	return c.dimensions
}

// Cosine returns the cosine similarity of a and b clamped to [0,1].
// Vectors of different length are compared over their common prefix.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	sim := dot / (math.Sqrt(magA)*math.Sqrt(magB) + cosineEpsilon)
	switch {
	case math.IsNaN(sim), sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
