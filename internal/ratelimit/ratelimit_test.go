package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBurstThenPaces(t *testing.T) {
	l := New("test", 10)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond, "initial burst should not block")

	start = time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "token beyond burst should wait")
}

func TestEveryAdmitsOnePerInterval(t *testing.T) {
	l := Every("pacer", 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestEveryNonPositiveNeverBlocks(t *testing.T) {
	l := Every("pacer", 0)
	assert.Nil(t, l)
	assert.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, "", l.Source())
}

func TestWaitHonoursCancellation(t *testing.T) {
	l := Every("slow", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestNewClampsRate(t *testing.T) {
	l := New("zero", 0)
	assert.Equal(t, 1.0, l.rate)
	assert.Equal(t, "zero", l.Source())
}
