package flows

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

// entryFlow is CollectUsername → CaptureClicks → Submit, shared by
// Registration and Login.
type entryFlow struct {
	backend  Backend
	session  Session
	settings Settings
	log      logging.Logger

	mu       sync.Mutex
	step     Step
	username string
	clicks   *pattern.Recorder
	inflight inflight
}

func newEntryFlow(b Backend, s Session, st Settings, l logging.Logger, editable bool, opts []pattern.RecorderOption) entryFlow {
	return entryFlow{
		backend:  b,
		session:  s,
		settings: st,
		log:      l,
		step:     StepCollectUsername,
		clicks:   pattern.NewRecorder(st.MaxClicks, editable, opts...),
	}
}

func (f *entryFlow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *entryFlow) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username
}

// Busy reports whether a submission is in flight.
func (f *entryFlow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight.busy
}

// Active returns the buffer clicks go to in the current step, or nil.
func (f *entryFlow) Active() *pattern.Recorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepCaptureClicks {
		return f.clicks
	}
	return nil
}

// SetUsername validates the username and moves on to click capture.
func (f *entryFlow) SetUsername(raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inflight.busy {
		return ErrBusy
	}
	if f.step != StepCollectUsername {
		return ErrWrongStep
	}
	name, err := common.NormalizeUsername(raw)
	if err != nil {
		return &Error{Kind: KindValidation, Message: "Enter a username of at most 64 printable characters.", Err: err}
	}
	f.username = name
	f.step = StepCaptureClicks
	return nil
}

// Back returns from click capture to the username. Captured clicks are kept.
func (f *entryFlow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inflight.busy {
		return ErrBusy
	}
	if f.step == StepCaptureClicks {
		f.step = StepCollectUsername
	}
	return nil
}

// Cancel returns to the initial step with every buffer cleared. A pending
// submission will end with ErrStale.
func (f *entryFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight.abandon()
	f.step = StepCollectUsername
	f.username = ""
	f.clicks.Clear()
}

type submitFunc func(ctx context.Context, username string, p pattern.Pattern) (*client.AuthResult, error)

// submit sends the captured pattern. onFailure adjusts the state after a
// backend failure; it runs with the lock held.
func (f *entryFlow) submit(ctx context.Context, call submitFunc, authMessage string, onFailure func(*Error)) (*client.AuthResult, error) {
	f.mu.Lock()
	if f.inflight.busy {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	if f.step != StepCaptureClicks {
		f.mu.Unlock()
		return nil, ErrWrongStep
	}
	p := f.clicks.Snapshot()
	if len(p) < f.settings.MinClicks || len(p) == 0 {
		f.mu.Unlock()
		return nil, validation("Click at least %d point(s) on the image.", max(f.settings.MinClicks, 1))
	}
	gen, _ := f.inflight.begin()
	f.step = StepSubmit
	username := f.username
	f.mu.Unlock()

	res, err := call(ctx, username, p)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.inflight.finish(gen) {
		f.log.Debug(ctx, "dropping result of a cancelled submission")
		return nil, ErrStale
	}
	if err != nil {
		fe := translate(err, authMessage)
		f.step = StepCaptureClicks
		onFailure(fe)
		f.log.Info(ctx, "submission failed", "kind", fe.Kind.String())
		return nil, fe
	}

	f.step = StepDone
	f.clicks.Clear()
	if err := f.session.Login(ctx, res); err != nil {
		f.log.Warn(ctx, "session not persisted", "error", err)
	}
	return res, nil
}

// Registration creates an account and signs it in.
type Registration struct {
	entryFlow
}

// NewRegistration builds a registration flow whose click buffer is
// editable. opts are applied to that buffer.
func NewRegistration(b Backend, s Session, st Settings, l logging.Logger, opts ...pattern.RecorderOption) *Registration {
	return &Registration{newEntryFlow(b, s, st, l.With("flow", "registration"), true, opts)}
}

// Submit registers the username with the captured pattern. The local
// session is established only after the backend acknowledged it.
//
// A taken username sends the flow back to StepCollectUsername with the
// clicks kept; connectivity failures keep every buffer.
func (r *Registration) Submit(ctx context.Context) (*client.AuthResult, error) {
	return r.submit(ctx, r.backend.Register, msgInvalidCredentials, func(fe *Error) {
		switch fe.Kind {
		case KindConflict:
			r.step = StepCollectUsername
		case KindConnectivity, KindThrottled:
		default:
			r.clicks.Clear()
		}
	})
}

// Login verifies an existing account.
type Login struct {
	entryFlow
}

// NewLogin builds a login flow; its click buffer is not editable.
func NewLogin(b Backend, s Session, st Settings, l logging.Logger, opts ...pattern.RecorderOption) *Login {
	return &Login{newEntryFlow(b, s, st, l.With("flow", "login"), false, opts)}
}

// Submit verifies the captured pattern. Any failure clears the click
// buffer so the whole pattern has to be entered again.
func (f *Login) Submit(ctx context.Context) (*client.AuthResult, error) {
	return f.submit(ctx, f.backend.Verify, msgInvalidCredentials, func(*Error) {
		f.clicks.Clear()
	})
}
