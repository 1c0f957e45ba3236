package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_AllowThenDenyWithinInterval(t *testing.T) {
	m := NewMemory(5 * time.Second)
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	m.now = func() time.Time { return now }

	ctx := context.Background()
	require.True(t, m.Allow(ctx, "10.0.0.1"))

	now = now.Add(3 * time.Second)
	require.False(t, m.Allow(ctx, "10.0.0.1"), "second call within interval must be denied")

	// A denied call must not refresh the slot.
	now = now.Add(2 * time.Second)
	require.True(t, m.Allow(ctx, "10.0.0.1"), "interval measured from the admitted call")
}

func TestMemory_IndependentAddresses(t *testing.T) {
	m := NewMemory(5 * time.Second)
	ctx := context.Background()
	require.True(t, m.Allow(ctx, "10.0.0.1"))
	require.True(t, m.Allow(ctx, "10.0.0.2"))
	require.False(t, m.Allow(ctx, "10.0.0.1"))
}

func TestMemory_ConcurrentSameAddressAdmitsOne(t *testing.T) {
	m := NewMemory(5 * time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Allow(ctx, "10.9.9.9") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, admitted, "exactly one racing request may win the slot")
}

func TestMemory_SweepEvictsStaleEntries(t *testing.T) {
	m := NewMemory(time.Second)
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	m.now = func() time.Time { return now }

	ctx := context.Background()
	require.True(t, m.Allow(ctx, "old"))
	now = now.Add(11 * time.Second)
	require.True(t, m.Allow(ctx, "fresh"))

	m.sweep()

	m.mu.Lock()
	_, oldKept := m.last["old"]
	_, freshKept := m.last["fresh"]
	m.mu.Unlock()
	require.False(t, oldKept, "entries idle for ten intervals are evicted")
	require.True(t, freshKept)

	// Eviction must not grant an extra slot early.
	require.False(t, m.Allow(ctx, "fresh"))
}
