package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRateLimiterBurst(t *testing.T) {
	r := NewRateLimiter(0.001, 2)
	r.Register("respond")

	assert.True(t, r.Allow("respond"))
	assert.True(t, r.Allow("respond"))
	assert.False(t, r.Allow("respond"))

	status := r.Status("respond")
	assert.Equal(t, "respond", status.Tool)
	assert.Equal(t, 2, status.Burst)
	assert.EqualValues(t, 2, status.Allowed)
	assert.EqualValues(t, 1, status.Rejected)
	assert.False(t, status.Unlimited)
}

func TestRateLimiterUnregisteredToolIsUnlimited(t *testing.T) {
	r := NewRateLimiter(1, 1)

	for i := 0; i < 10; i++ {
		assert.True(t, r.Allow("analyze"))
	}
	assert.True(t, r.Status("analyze").Unlimited)
	assert.NoError(t, r.Wait(context.Background(), "analyze"))
}

func TestRateLimiterDisabled(t *testing.T) {
	r := NewRateLimiter(0, 1)
	r.Register("respond")

	for i := 0; i < 10; i++ {
		assert.True(t, r.Allow("respond"))
	}
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRateLimiter(0.001, 1)
	r.Register("respond")
	require.True(t, r.Allow("respond"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, r.Wait(ctx, "respond"))
}
