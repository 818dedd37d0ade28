package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterStore_SharedPerSource(t *testing.T) {
	store := NewLimiterStore(60)
	store.Register("news_feed", 10)

	assert.Same(t, store.GetLimiter("news_feed"), store.GetLimiter("news_feed"))
	assert.NotSame(t, store.GetLimiter("news_feed"), store.GetLimiter("social_feed"))

	// Unregistered keys get the fallback budget and stay stable afterwards.
	fallback := store.GetLimiter("social_feed")
	assert.Same(t, fallback, store.GetLimiter("social_feed"))
}

func TestTokenLimiter_ExhaustsBudget(t *testing.T) {
	limiter := NewTokenLimiter(3)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, 2))
	assert.Equal(t, 1, limiter.GetRemaining())
	require.NoError(t, limiter.Wait(ctx, 1))
	assert.Equal(t, 0, limiter.GetRemaining())
}

func TestTokenLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewTokenLimiter(1)
	require.NoError(t, limiter.Wait(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
