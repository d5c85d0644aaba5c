// Package throttle limits failed verification attempts per key (a username
// or user id). After Max failures inside Window the key is locked until the
// window that started with the first failure runs out.
package throttle

import (
	"context"
	"time"
)

// Limiter is consulted before every verification attempt.
type Limiter interface {
	// Allow returns common.ErrTooManyAttempts while key is locked.
	Allow(ctx context.Context, key string) error
	// Fail records a failed attempt.
	Fail(ctx context.Context, key string) error
	// Reset forgets all failures of key, typically after a success.
	Reset(ctx context.Context, key string) error
}

// Policy is the lockout threshold. Max <= 0 disables throttling.
type Policy struct {
	Max    int
	Window time.Duration
}

func (p Policy) enabled() bool { return p.Max > 0 && p.Window > 0 }
