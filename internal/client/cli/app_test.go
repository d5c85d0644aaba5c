package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/client/config"
	"github.com/dmitrijs2005/clickpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clickpass/internal/client/session"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory backend.
type fakeClient struct {
	mu       sync.Mutex
	users    map[string]pattern.Pattern
	pingErr  error
	sessions map[string]string
	changes  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{users: map[string]pattern.Pattern{}, sessions: map[string]string{}}
}

func (f *fakeClient) issue(name string) *client.AuthResult {
	token := "tok-" + name
	f.sessions[token] = name
	return &client.AuthResult{
		UserID:    "id-" + name,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
		Profile:   client.Profile{UserID: "id-" + name, Username: name},
	}
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Register(_ context.Context, username string, p pattern.Pattern) (*client.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return nil, common.ErrUsernameTaken
	}
	f.users[username] = p.Clone()
	return f.issue(username), nil
}

func (f *fakeClient) Verify(_ context.Context, username string, p pattern.Pattern) (*client.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[username]
	if !ok || !pattern.Matches(stored, p, 50) {
		return nil, common.ErrInvalidCredentials
	}
	return f.issue(username), nil
}

func (f *fakeClient) ChangeCredential(_ context.Context, userID string, current, next pattern.Pattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := strings.TrimPrefix(userID, "id-")
	if !pattern.Matches(f.users[name], current, 50) {
		return common.ErrVerificationFailed
	}
	f.users[name] = next.Clone()
	f.changes++
	return nil
}

func (f *fakeClient) InvalidateSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeClient) GetSession(_ context.Context, token, userID string) (*client.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.sessions[token]
	return &client.SessionState{Valid: ok && "id-"+name == userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeClient) GetProfile(_ context.Context, userID string) (*client.Profile, error) {
	return &client.Profile{UserID: userID, Username: strings.TrimPrefix(userID, "id-"), ImageURL: "https://img/" + userID}, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func testApp(t *testing.T, fc *fakeClient, input string) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	db, err := client.InitDatabase(context.Background(), filepath.Join(dir, "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.OnlineCheckInterval = 0
	cfg.StateDir = dir

	b := session.NewBinding(fc, metadata.NewSQLiteRepository(db), logging.Nop())
	require.NoError(t, b.Refresh(context.Background()))

	var out bytes.Buffer
	a := newApp(cfg, fc, b, strings.NewReader(input), &out, logging.Nop())
	return a, &out
}

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestApp_RegisterAlice(t *testing.T) {
	fc := newFakeClient()
	a, out := testApp(t, fc, script("register", "alice", "60,40", "done", "whoami", "exit"))

	a.Run(context.Background())

	assert.True(t, a.binding.IsAuthenticated())
	assert.Equal(t, "alice", a.binding.CurrentUser().Username)
	// 400x300 rendered onto 800x600 intrinsic.
	assert.Equal(t, pattern.Pattern{{X: 120, Y: 80}}, fc.users["alice"])
	assert.Contains(t, out.String(), "Welcome, alice!")
	assert.Contains(t, out.String(), "clicks: 1/5")
	assert.Contains(t, out.String(), "https://img/id-alice")
}

func TestApp_FailedLoginThenSuccess(t *testing.T) {
	fc := newFakeClient()
	fc.users["alice"] = pattern.Pattern{{X: 100, Y: 100}, {X: 200, Y: 200}}
	a, out := testApp(t, fc, script(
		"login", "alice",
		"50,50", "200,200", "done",
		"50,50", "100,100", "done",
		"exit",
	))

	a.Run(context.Background())

	s := out.String()
	assert.Contains(t, s, "Username or click pattern is incorrect.")
	assert.Contains(t, s, "clicks: 0/5", "buffer cleared after failure")
	assert.Contains(t, s, "Welcome, alice!")
	assert.True(t, a.binding.IsAuthenticated())
}

func TestApp_FullPatternIsAnnounced(t *testing.T) {
	fc := newFakeClient()
	a, out := testApp(t, fc, script(
		"register", "erin",
		"1,1", "2,2", "3,3", "4,4", "5,5", "6,6",
		"done", "exit",
	))

	a.Run(context.Background())

	s := out.String()
	assert.Equal(t, 1, strings.Count(s, "Pattern is full; type 'done' to submit."))
	assert.Less(t, strings.Index(s, "clicks: 5/5"), strings.Index(s, "Pattern is full"))
	assert.Contains(t, s, "Already 5 clicks; extra clicks are ignored.")
	assert.Len(t, fc.users["erin"], 5)
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StateDir = filepath.Join(t.TempDir(), "state")
	cfg.MaxClicks = 0

	_, err := NewApp(context.Background(), cfg)
	require.ErrorIs(t, err, pattern.ErrInvalidLimits)
	assert.NoDirExists(t, cfg.StateDir)
}

func TestApp_UndoOnlyWhileRegistering(t *testing.T) {
	fc := newFakeClient()
	a, out := testApp(t, fc, script(
		"register", "bob", "10,10", "20,20", "undo 1", "done",
		"logout",
		"login", "bob", "10,10", "undo 1", "cancel",
		"exit",
	))

	a.Run(context.Background())

	assert.Equal(t, pattern.Pattern{{X: 40, Y: 40}}, fc.users["bob"])
	assert.Contains(t, out.String(), "Clicks cannot be removed here")
	assert.Contains(t, out.String(), "Cancelled.")
	assert.False(t, a.binding.IsAuthenticated())
}

func TestApp_PasswdHappyPath(t *testing.T) {
	fc := newFakeClient()
	a, out := testApp(t, fc, script(
		"register", "carol", "5,5", "10,10", "15,15", "done",
		"passwd",
		"5,5", "10,10", "15,15", "done",
		"25,25", "30,30", "done",
		"35,35", "done",
		"250,250", "30,30", "35,35", "done",
		"26,24", "30,31", "35,35", "done",
		"exit",
	))

	a.Run(context.Background())

	s := out.String()
	assert.Contains(t, s, "The new pattern needs at least 3 points.")
	assert.Contains(t, s, "The confirmation does not match the new pattern.")
	assert.Contains(t, s, "Click pattern changed.")
	assert.Equal(t, 1, fc.changes)
	assert.Equal(t, pattern.Pattern{{X: 50, Y: 50}, {X: 60, Y: 60}, {X: 70, Y: 70}}, fc.users["carol"])
}

func TestApp_StatusAndMode(t *testing.T) {
	fc := newFakeClient()
	a, out := testApp(t, fc, script("status", "exit"))

	a.Run(context.Background())
	assert.Equal(t, ModeOnline, a.Mode())
	assert.Contains(t, out.String(), "not signed in")

	fc.pingErr = client.ErrUnavailable
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, a.Mode())
	assert.Equal(t, "(offline)", a.status())
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	fc := newFakeClient()
	dir := t.TempDir()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(dir, "client.db"))
	require.NoError(t, err)
	defer db.Close()
	store := metadata.NewSQLiteRepository(db)

	res, err := fc.Register(ctx, "dana", pattern.Pattern{{X: 1, Y: 1}})
	require.NoError(t, err)
	require.NoError(t, session.NewBinding(fc, store, logging.Nop()).Login(ctx, res))

	restarted := session.NewBinding(fc, store, logging.Nop())
	restarted.Start(ctx)
	require.NoError(t, restarted.WaitReady(ctx))
	restarted.Close()
	assert.Equal(t, "dana", restarted.CurrentUser().Username)
}
