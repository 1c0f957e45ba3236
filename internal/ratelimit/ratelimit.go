// Package ratelimit throttles attendance submissions to one per address
// per interval.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most one submission per key per interval.
type Limiter interface {
	// Allow reports whether key may submit now. An admitted call consumes
	// the slot for the full interval; a rejected call leaves it untouched.
	Allow(ctx context.Context, key string) bool
}

// Memory is an in-memory per-key limiter. State is lost on restart.
type Memory struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
	stop chan struct{}
	once sync.Once
}

// NewMemory creates a limiter admitting one call per key per interval.
func NewMemory(interval time.Duration) *Memory {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Memory{
		interval: interval,
		now:      time.Now,
		last:     make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.last[key]; ok && now.Sub(last) < m.interval {
		return false
	}
	m.last[key] = now
	return true
}

// StartSweeper evicts entries idle for ten intervals, checking every
// `every`, until Stop is called. Keeps the map bounded under sustained
// distinct-address traffic.
func (m *Memory) StartSweeper(every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper goroutine.
func (m *Memory) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) sweep() {
	cutoff := m.now().Add(-10 * m.interval)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, last := range m.last {
		if last.Before(cutoff) {
			delete(m.last, key)
		}
	}
}
