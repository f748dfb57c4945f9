package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_SpacesConsecutiveTurns(t *testing.T) {
	const d = 40 * time.Millisecond
	l := New(d)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}

	assert.GreaterOrEqual(t, time.Since(start), 2*d)
}

func TestLimiter_NoWaitAfterIdleInterval(t *testing.T) {
	const d = 30 * time.Millisecond
	l := New(d)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	time.Sleep(d + 10*time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.Less(t, time.Since(start), d/2)
}

func TestLimiter_ZeroIntervalNeverBlocks(t *testing.T) {
	l := New(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, time.Duration(0), l.Interval())
}

func TestLimiter_SharedAcrossGoroutines(t *testing.T) {
	const (
		d       = 25 * time.Millisecond
		callers = 5
	)
	l := New(d)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Wait(context.Background()))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), (callers-1)*d)
}

func TestLimiter_ContextCancelled(t *testing.T) {
	l := New(time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func recordGrants(l *Limiter) func() []time.Time {
	var (
		mu     sync.Mutex
		grants []time.Time
	)
	l.onGrant = func(at time.Time) {
		mu.Lock()
		grants = append(grants, at)
		mu.Unlock()
	}
	return func() []time.Time {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Time(nil), grants...)
	}
}

func assertMinGap(t *testing.T, grants []time.Time, d time.Duration) {
	t.Helper()
	for i := 1; i < len(grants); i++ {
		gap := grants[i].Sub(grants[i-1])
		assert.GreaterOrEqual(t, gap, d, "turn %d came %v after the previous one", i, gap)
	}
}

func TestLimiter_GapHoldsWithCallerWorkBetweenTurns(t *testing.T) {
	const d = 7 * time.Millisecond
	l := New(d)
	grants := recordGrants(l)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		require.NoError(t, l.Wait(ctx))
		if i%3 == 0 {
			time.Sleep(3 * time.Millisecond)
		}
	}

	got := grants()
	require.Len(t, got, 30)
	assertMinGap(t, got, d)
}

func TestLimiter_GapHoldsAcrossConcurrentCallers(t *testing.T) {
	const (
		d       = 7 * time.Millisecond
		callers = 20
	)
	l := New(d)
	grants := recordGrants(l)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Wait(context.Background()))
			if i%2 == 0 {
				time.Sleep(2 * time.Millisecond)
			}
			assert.NoError(t, l.Wait(context.Background()))
		}(i)
	}
	wg.Wait()

	got := grants()
	require.Len(t, got, 2*callers)
	assertMinGap(t, got, d)
}

func TestLimiter_CancelledWaitGrantsNoTurn(t *testing.T) {
	const d = 50 * time.Millisecond
	l := New(d)
	grants := recordGrants(l)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)

	require.NoError(t, l.Wait(context.Background()))
	got := grants()
	require.Len(t, got, 2)
	assertMinGap(t, got, d)
}
