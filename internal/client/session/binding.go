// Package session binds a verified identity to the client-held token.
//
// A Binding is constructed once by the application root and passed to every
// component that needs to know who is signed in. Its lifecycle is
// Start (one Refresh) → active → Close. Ready is closed when the first
// Refresh has finished; protected commands wait on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clickpass/internal/logging"
)

// User is the signed-in identity.
type User struct {
	ID        string
	Username  string
	ExpiresAt time.Time
}

// Backend is the part of the transport the binding talks to.
type Backend interface {
	InvalidateSession(ctx context.Context, token string) error
	GetSession(ctx context.Context, token, userID string) (*client.SessionState, error)
	GetProfile(ctx context.Context, userID string) (*client.Profile, error)
}

type Binding struct {
	backend Backend
	store   metadata.Repository
	log     logging.Logger

	mu    sync.RWMutex
	user  *User
	token string

	ready     chan struct{}
	readyOnce sync.Once
	wg        sync.WaitGroup
}

func NewBinding(backend Backend, store metadata.Repository, l logging.Logger) *Binding {
	return &Binding{
		backend: backend,
		store:   store,
		log:     l.With("module", "session"),
		ready:   make(chan struct{}),
	}
}

// Start runs the initial Refresh in the background.
func (b *Binding) Start(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.Refresh(ctx); err != nil {
			b.log.Warn(ctx, "initial session refresh failed", "error", err)
		}
	}()
}

// Close waits for a Refresh started by Start.
func (b *Binding) Close() {
	b.wg.Wait()
}

func (b *Binding) Ready() <-chan struct{} {
	return b.ready
}

// WaitReady blocks until the first Refresh completes or ctx is done.
func (b *Binding) WaitReady(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Binding) markReady() {
	b.readyOnce.Do(func() { close(b.ready) })
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (b *Binding) CurrentUser() *User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.user == nil {
		return nil
	}
	u := *b.user
	return &u
}

func (b *Binding) IsAuthenticated() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user != nil
}

// Token returns the held session token, or "".
func (b *Binding) Token() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

// Login adopts a session acknowledged by the backend and persists it. The
// in-memory state is set even when persisting fails.
func (b *Binding) Login(ctx context.Context, res *client.AuthResult) error {
	u := &User{ID: res.UserID, Username: res.Profile.Username, ExpiresAt: res.ExpiresAt}

	b.mu.Lock()
	previous := b.token
	b.user = u
	b.token = res.Token
	b.mu.Unlock()
	b.markReady()

	// A replaced session must not stay valid on the server.
	if previous != "" && previous != res.Token {
		if err := b.backend.InvalidateSession(ctx, previous); err != nil {
			b.log.Warn(ctx, "invalidate replaced session failed", "error", err)
		}
	}

	if err := b.persist(ctx, res.Token, u); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	b.log.Info(ctx, "signed in", "user_id", u.ID)
	return nil
}

// Logout invalidates the session on the backend and forgets it locally.
// The local state is cleared even when the backend is unreachable.
func (b *Binding) Logout(ctx context.Context) error {
	token := b.Token()
	b.clear()

	var errs []error
	if token != "" {
		if err := b.backend.InvalidateSession(ctx, token); err != nil {
			b.log.Warn(ctx, "invalidate session failed", "error", err)
			errs = append(errs, err)
		}
	}
	if err := b.store.ClearSession(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Refresh re-validates the held (or persisted) token against the backend.
// An invalid or expired session clears both memory and the store. A record
// past its stored expiry is dropped without asking the backend. When the
// backend cannot be reached the binding stays unauthenticated but keeps the
// persisted token for the next attempt.
func (b *Binding) Refresh(ctx context.Context) error {
	defer b.markReady()

	rec, err := b.load(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		b.clear()
		return nil
	}
	if !rec.ExpiresAt.IsZero() && !time.Now().Before(rec.ExpiresAt) {
		b.log.Info(ctx, "stored session expired", "user_id", rec.UserID)
		b.clear()
		return b.store.ClearSession(ctx)
	}
	token, userID, username := rec.Token, rec.UserID, rec.Username

	state, err := b.backend.GetSession(ctx, token, userID)
	if err != nil {
		b.clear()
		return fmt.Errorf("get session: %w", err)
	}
	if !state.Valid {
		b.log.Info(ctx, "stored session is no longer valid", "user_id", userID)
		b.clear()
		return b.store.ClearSession(ctx)
	}

	b.mu.Lock()
	b.user = &User{ID: userID, Username: username, ExpiresAt: state.ExpiresAt}
	b.token = token
	b.mu.Unlock()

	// The profile call is authenticated with the token adopted above.
	if p, err := b.backend.GetProfile(ctx, userID); err == nil && p.Username != "" && p.Username != username {
		b.mu.Lock()
		if b.user != nil && b.user.ID == userID {
			b.user.Username = p.Username
		}
		b.mu.Unlock()
	}

	if u := b.CurrentUser(); u != nil && u.ID == userID {
		if err := b.persist(ctx, token, u); err != nil {
			b.log.Warn(ctx, "persist refreshed session failed", "error", err)
		}
	}
	return nil
}

// load prefers the in-memory session over the persisted one.
func (b *Binding) load(ctx context.Context) (*metadata.StoredSession, error) {
	b.mu.RLock()
	var rec *metadata.StoredSession
	if b.user != nil && b.token != "" {
		rec = &metadata.StoredSession{Token: b.token, UserID: b.user.ID, Username: b.user.Username, ExpiresAt: b.user.ExpiresAt}
	}
	b.mu.RUnlock()
	if rec != nil {
		return rec, nil
	}

	rec, err := b.store.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return rec, nil
}

func (b *Binding) persist(ctx context.Context, token string, u *User) error {
	return b.store.SaveSession(ctx, metadata.StoredSession{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		ExpiresAt: u.ExpiresAt,
	})
}

func (b *Binding) clear() {
	b.mu.Lock()
	b.user = nil
	b.token = ""
	b.mu.Unlock()
}
