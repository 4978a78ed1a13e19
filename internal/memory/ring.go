package memory

import (
	"context"
	"sync"

	"github.com/baserah/baserah/internal/models"
)

// RingHistory keeps the latest turns in memory and drops the oldest past capacity
type RingHistory struct {
	turns    []models.ConversationTurn
	start    int
	size     int
	capacity int
	closed   bool
	mu       sync.RWMutex
}

// NewRingHistory creates a ring holding at most capacity turns
func NewRingHistory(capacity int) *RingHistory {
	if capacity <= 0 {
		capacity = DefaultConfig().Capacity
	}
	return &RingHistory{
		turns:    make([]models.ConversationTurn, capacity),
		capacity: capacity,
	}
}

// Append records a turn, evicting the oldest when full
func (r *RingHistory) Append(ctx context.Context, turn models.ConversationTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	if r.size < r.capacity {
		r.turns[(r.start+r.size)%r.capacity] = turn
		r.size++
		return nil
	}
	r.turns[r.start] = turn
	r.start = (r.start + 1) % r.capacity
	return nil
}

// Recent returns up to n of the latest turns, oldest first. n <= 0 returns all.
func (r *RingHistory) Recent(ctx context.Context, n int) ([]models.ConversationTurn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrClosed
	}
	return r.recentLocked(n), nil
}

func (r *RingHistory) recentLocked(n int) []models.ConversationTurn {
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]models.ConversationTurn, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.turns[(r.start+i)%r.capacity])
	}
	return out
}

// All returns every held turn, oldest first
func (r *RingHistory) All() []models.ConversationTurn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recentLocked(0)
}

// Len returns the number of held turns
func (r *RingHistory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Count returns the number of held turns
func (r *RingHistory) Count(ctx context.Context) (int64, error) {
	return int64(r.Len()), nil
}

// Capacity returns the maximum number of held turns
func (r *RingHistory) Capacity() int {
	return r.capacity
}

// Clear drops every held turn
func (r *RingHistory) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = make([]models.ConversationTurn, r.capacity)
	r.start = 0
	r.size = 0
}

// Close marks the ring closed
func (r *RingHistory) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
