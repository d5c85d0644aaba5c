package flows

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/client/session"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

var testSettings = Settings{Tolerance: 50, MinClicks: 1, MaxClicks: 5, MinNewClicks: 3}

// fakeBackend keeps credentials in memory and matches them the way the
// server does.
type fakeBackend struct {
	mu        sync.Mutex
	users     map[string]pattern.Pattern
	ids       map[string]string
	tolerance float64
	err       error
	gate      chan struct{}
	started   chan struct{}

	changeCalls int
	lastCurrent pattern.Pattern
	lastNext    pattern.Pattern
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{users: map[string]pattern.Pattern{}, ids: map[string]string{}, tolerance: 50}
}

func (f *fakeBackend) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeBackend) result(username string) *client.AuthResult {
	id := f.ids[username]
	return &client.AuthResult{
		UserID:    id,
		Token:     "tok-" + username,
		ExpiresAt: time.Now().Add(time.Hour),
		Profile:   client.Profile{UserID: id, Username: username},
	}
}

func (f *fakeBackend) Register(_ context.Context, username string, p pattern.Pattern) (*client.AuthResult, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.users[username]; ok {
		return nil, common.ErrUsernameTaken
	}
	f.users[username] = p.Clone()
	f.ids[username] = "id-" + username
	return f.result(username), nil
}

func (f *fakeBackend) Verify(_ context.Context, username string, p pattern.Pattern) (*client.AuthResult, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	stored, ok := f.users[username]
	if !ok || !pattern.Matches(stored, p, f.tolerance) {
		return nil, common.ErrInvalidCredentials
	}
	return f.result(username), nil
}

func (f *fakeBackend) ChangeCredential(_ context.Context, userID string, current, next pattern.Pattern) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeCalls++
	f.lastCurrent, f.lastNext = current.Clone(), next.Clone()
	if f.err != nil {
		return f.err
	}
	for name, id := range f.ids {
		if id != userID {
			continue
		}
		if !pattern.Matches(f.users[name], current, f.tolerance) {
			return common.ErrVerificationFailed
		}
		f.users[name] = next.Clone()
		return nil
	}
	return common.ErrVerificationFailed
}

type fakeSession struct {
	mu     sync.Mutex
	user   *session.User
	logins int
}

func (s *fakeSession) Login(_ context.Context, res *client.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins++
	s.user = &session.User{ID: res.UserID, Username: res.Profile.Username, ExpiresAt: res.ExpiresAt}
	return nil
}

func (s *fakeSession) CurrentUser() *session.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *fakeSession) IsAuthenticated() bool { return s.CurrentUser() != nil }

func addAll(r *pattern.Recorder, p pattern.Pattern) {
	for _, pt := range p {
		r.Add(pt)
	}
}

func pts(xy ...float64) pattern.Pattern {
	out := make(pattern.Pattern, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, pattern.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}
