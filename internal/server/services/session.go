package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/dbx"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/server/auth"
	"github.com/dmitrijs2005/clickpass/internal/server/models"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// IssuedSession is a freshly stored session and the token naming it.
type IssuedSession struct {
	Session *models.Session
	Token   string
}

// SessionState answers GetSession.
type SessionState struct {
	Valid     bool
	ExpiresAt time.Time
}

// SessionService issues, checks and revokes sessions. The sessions table is
// authoritative: a correctly signed token whose row is gone is invalid.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
	validity    time.Duration
	now         func() time.Time
	log         logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, secret []byte, validity time.Duration, log logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		secret:      secret,
		validity:    validity,
		now:         time.Now,
		log:         log.With("module", "sessions"),
	}
}

// Issue stores a new session for userID through tx and signs its token.
func (s *SessionService) Issue(ctx context.Context, tx dbx.DBTX, userID string) (*IssuedSession, error) {
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.validity).UTC(),
	}
	if err := s.repomanager.Sessions(tx).Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := auth.GenerateToken(userID, sess.ID, s.secret, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &IssuedSession{Session: sess, Token: token}, nil
}

// Authenticate resolves a token to its live session. Expiry is checked on
// every call against both the token and the stored row.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	sess, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess.UserID != claims.UserID {
		return nil, common.ErrInvalidToken
	}
	if sess.Expired(s.now()) {
		return nil, common.ErrSessionExpired
	}
	return sess, nil
}

// Get reports whether token is a live session of userID. Unusable tokens are
// answered with Valid=false rather than an error; only storage failures
// are returned as errors.
func (s *SessionService) Get(ctx context.Context, token, userID string) (*SessionState, error) {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrSessionExpired) {
			return &SessionState{}, nil
		}
		return nil, err
	}
	if userID != "" && sess.UserID != userID {
		return &SessionState{}, nil
	}
	return &SessionState{Valid: true, ExpiresAt: sess.ExpiresAt}, nil
}

// Invalidate deletes the session named by token. Garbage, unknown and
// expired tokens are accepted silently.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	claims, err := auth.ParseTokenIgnoringExpiry(token, s.secret)
	if err != nil {
		s.log.Debug(ctx, "invalidate: ignoring unusable token", "error", err)
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info(ctx, "session invalidated", "user_id", claims.UserID)
	return nil
}

// Purge removes expired sessions.
func (s *SessionService) Purge(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
