package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/common"
)

type counter struct {
	failures int
	resetAt  time.Time
}

// MemoryLimiter keeps counters in process memory. It is the fallback when
// no Redis is configured and is only correct for a single server instance.
type MemoryLimiter struct {
	mu       sync.Mutex
	policy   Policy
	counters map[string]*counter
	now      func() time.Time
}

func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:   policy,
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// live returns the counter of key, dropping it when its window has passed.
func (l *MemoryLimiter) live(key string) *counter {
	c, ok := l.counters[key]
	if !ok {
		return nil
	}
	if !l.now().Before(c.resetAt) {
		delete(l.counters, key)
		return nil
	}
	return c
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	if !l.policy.enabled() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if c := l.live(key); c != nil && c.failures >= l.policy.Max {
		return common.ErrTooManyAttempts
	}
	return nil
}

func (l *MemoryLimiter) Fail(_ context.Context, key string) error {
	if !l.policy.enabled() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.live(key)
	if c == nil {
		c = &counter{resetAt: l.now().Add(l.policy.Window)}
		l.counters[key] = c
	}
	c.failures++
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counters, key)
	return nil
}

// Sweep drops expired counters. Called by the server janitor.
func (l *MemoryLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.counters {
		l.live(key)
	}
}
