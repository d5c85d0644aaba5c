package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

// Profile is the public part of a user account.
type Profile struct {
	UserID    string
	Username  string
	CreatedAt time.Time
	LastLogin *time.Time
	ImageURL  string
}

// AuthResult is returned by a successful Register or Verify.
type AuthResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	Profile   Profile
}

// SessionState answers GetSession.
type SessionState struct {
	Valid     bool
	ExpiresAt time.Time
}

type Client interface {
	Close() error
	Register(ctx context.Context, username string, p pattern.Pattern) (*AuthResult, error)
	Verify(ctx context.Context, username string, p pattern.Pattern) (*AuthResult, error)
	ChangeCredential(ctx context.Context, userID string, current, next pattern.Pattern) error
	InvalidateSession(ctx context.Context, token string) error
	GetSession(ctx context.Context, token, userID string) (*SessionState, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	Ping(ctx context.Context) error
}
