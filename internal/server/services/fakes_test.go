package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/cryptox"
	"github.com/dmitrijs2005/clickpass/internal/dbx"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/dmitrijs2005/clickpass/internal/server/models"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/users"
	"github.com/dmitrijs2005/clickpass/internal/server/throttle"
	"github.com/stretchr/testify/require"
)

// store is an in-memory stand-in for the three repositories. It ignores
// the DBTX it is handed; transaction boundaries are asserted with sqlmock.
type store struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*models.User
	creds    map[string]*models.Credential
	sessions map[string]*models.Session

	failCreateCredential error
	failFind             error

	credLookups []string
}

func newStore() *store {
	return &store{
		users:    map[string]*models.User{},
		creds:    map[string]*models.Credential{},
		sessions: map[string]*models.Session{},
	}
}

func (s *store) RunMigrations(context.Context, *sql.DB) error { return nil }
func (s *store) Users(dbx.DBTX) users.Repository              { return (*userRepo)(s) }
func (s *store) Credentials(dbx.DBTX) credentials.Repository  { return (*credRepo)(s) }
func (s *store) Sessions(dbx.DBTX) sessions.Repository        { return (*sessionRepo)(s) }

type userRepo store

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrUsernameTaken
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("u-%d", r.seq)
	u.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cp := *u
	r.users[u.ID] = &cp
	return u, nil
}

func (r *userRepo) GetByUsername(_ context.Context, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].LastLogin = &at
	return nil
}

type credRepo store

func (r *credRepo) Create(_ context.Context, c *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateCredential != nil {
		return r.failCreateCredential
	}
	cp := *c
	r.creds[c.UserID] = &cp
	return nil
}

func (r *credRepo) Get(_ context.Context, userID string) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credLookups = append(r.credLookups, userID)
	c, ok := r.creds[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *credRepo) GetForUpdate(ctx context.Context, userID string) (*models.Credential, error) {
	return r.Get(ctx, userID)
}

func (r *credRepo) Replace(_ context.Context, c *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[c.UserID]; !ok {
		return common.ErrorNotFound
	}
	cp := *c
	r.creds[c.UserID] = &cp
	return nil
}

type sessionRepo store

func (r *sessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *sessionRepo) Find(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *sessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeSigner struct {
	url string
	err error
}

func (f fakeSigner) PresignGet(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url + key, nil
}

var testSettings = Settings{
	Tolerance:    pattern.DefaultTolerance,
	MinClicks:    1,
	MaxClicks:    5,
	MinNewClicks: 3,
	Bounds:       pattern.Dimensions{Width: 800, Height: 600},
}

type fixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *store
	sessions *SessionService
	users    *UserService
	limiter  *throttle.MemoryLimiter
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sealer, err := cryptox.NewSealer([]byte("test-secret"))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	clock := &now

	st := newStore()
	sess := NewSessionService(db, st, []byte("jwt-secret"), time.Hour, logging.Nop())
	sess.now = func() time.Time { return *clock }

	limiter := throttle.NewMemoryLimiter(throttle.Policy{Max: 3, Window: time.Hour})
	us := NewUserService(db, st, sess, sealer, limiter, fakeSigner{url: "https://s3/"}, testSettings, logging.Nop())
	us.now = func() time.Time { return *clock }

	return &fixture{db: db, mock: mock, store: st, sessions: sess, users: us, limiter: limiter, clock: clock}
}

// expectTx queues n committed transactions.
func (f *fixture) expectTx(n int) {
	for i := 0; i < n; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
	}
}
