// Package metadata is the client's key/value store. Between runs it holds
// the session record: token, user id, username and expiry.
package metadata

import (
	"context"
	"time"
)

// Keys of the session record.
const (
	KeySessionToken = "session_token"
	KeyUserID       = "user_id"
	KeyUsername     = "username"
	KeyExpiresAt    = "session_expires_at"
)

var sessionKeys = []string{KeySessionToken, KeyUserID, KeyUsername, KeyExpiresAt}

// StoredSession is the persisted part of a signed-in session.
type StoredSession struct {
	Token     string
	UserID    string
	Username  string
	ExpiresAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// SaveSession replaces the session record in one transaction.
	SaveSession(ctx context.Context, s StoredSession) error
	// LoadSession returns nil when no complete record is stored.
	LoadSession(ctx context.Context) (*StoredSession, error)
	ClearSession(ctx context.Context) error
}
