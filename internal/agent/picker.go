package agent

import (
	"math/rand"
	"sync"
	"time"
)

// Picker chooses one of n candidates
type Picker interface {
	Pick(n int) int
}

// RandPicker picks uniformly from a seeded source
type RandPicker struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewRandPicker creates a picker. Zero seeds from the clock.
func NewRandPicker(seed int64) *RandPicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandPicker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns an index in [0, n)
func (p *RandPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}
