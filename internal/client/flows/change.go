package flows

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

// PasswordChange is VerifyCurrent → CaptureNew → ConfirmNew → Commit → Done.
//
// The current pattern is verified through the login path, so a successful
// VerifyCurrent also refreshes the session. ConfirmNew is checked locally
// with the same tolerance the server uses. Commit sends both the current
// and the new pattern; the server verifies the current one again and
// replaces the credential in the same transaction.
type PasswordChange struct {
	backend  Backend
	session  Session
	settings Settings
	log      logging.Logger

	mu       sync.Mutex
	step     Step
	current  *pattern.Recorder
	next     *pattern.Recorder
	confirm  *pattern.Recorder
	verified pattern.Pattern
	inflight inflight
}

func NewPasswordChange(b Backend, s Session, st Settings, l logging.Logger, opts ...pattern.RecorderOption) *PasswordChange {
	return &PasswordChange{
		backend:  b,
		session:  s,
		settings: st,
		log:      l.With("flow", "password_change"),
		step:     StepVerifyCurrent,
		current:  pattern.NewRecorder(st.MaxClicks, false, opts...),
		next:     pattern.NewRecorder(st.MaxClicks, true, opts...),
		confirm:  pattern.NewRecorder(st.MaxClicks, false, opts...),
	}
}

func (f *PasswordChange) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *PasswordChange) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight.busy
}

// Active returns the buffer clicks go to in the current step, or nil.
func (f *PasswordChange) Active() *pattern.Recorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.step {
	case StepVerifyCurrent:
		return f.current
	case StepCaptureNew:
		return f.next
	case StepConfirmNew:
		return f.confirm
	default:
		return nil
	}
}

// SubmitCurrent verifies the current pattern. On failure the buffer is
// cleared and the flow stays in StepVerifyCurrent.
func (f *PasswordChange) SubmitCurrent(ctx context.Context) error {
	f.mu.Lock()
	if err := f.precheck(StepVerifyCurrent); err != nil {
		f.mu.Unlock()
		return err
	}
	user := f.session.CurrentUser()
	if user == nil {
		f.mu.Unlock()
		return &Error{Kind: KindAuthentication, Message: "Sign in to change your pattern."}
	}
	p := f.current.Snapshot()
	if len(p) < max(f.settings.MinClicks, 1) {
		f.mu.Unlock()
		return validation("Click at least %d point(s) on the image.", max(f.settings.MinClicks, 1))
	}
	gen, _ := f.inflight.begin()
	f.mu.Unlock()

	res, err := f.backend.Verify(ctx, user.Username, p)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.inflight.finish(gen) {
		return ErrStale
	}
	f.current.Clear()
	if err != nil {
		fe := translate(err, msgVerificationFailed)
		f.log.Info(ctx, "current pattern rejected", "kind", fe.Kind.String())
		return fe
	}

	if err := f.session.Login(ctx, res); err != nil {
		f.log.Warn(ctx, "session not persisted", "error", err)
	}
	f.verified = p
	f.step = StepCaptureNew
	return nil
}

// AcceptNew finishes capturing the new pattern, which needs at least
// MinNewClicks points.
func (f *PasswordChange) AcceptNew() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.precheck(StepCaptureNew); err != nil {
		return err
	}
	if n := f.next.Len(); n < f.settings.MinNewClicks || n == 0 {
		return validation("The new pattern needs at least %d points.", max(f.settings.MinNewClicks, 1))
	}
	f.step = StepConfirmNew
	return nil
}

// Confirm compares the confirmation with the new pattern locally. A
// mismatch clears only the confirmation buffer.
func (f *PasswordChange) Confirm() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.precheck(StepConfirmNew); err != nil {
		return err
	}
	if !pattern.Matches(f.next.Snapshot(), f.confirm.Snapshot(), f.settings.Tolerance) {
		f.confirm.Clear()
		return &Error{Kind: KindConsistency, Message: msgConfirmMismatch}
	}
	f.step = StepCommit
	return nil
}

// Commit asks the backend to replace the credential. A verification failure
// restarts the flow from StepVerifyCurrent with every buffer cleared;
// connectivity problems keep the flow in StepCommit so it can be retried.
func (f *PasswordChange) Commit(ctx context.Context) error {
	f.mu.Lock()
	if err := f.precheck(StepCommit); err != nil {
		f.mu.Unlock()
		return err
	}
	user := f.session.CurrentUser()
	if user == nil {
		f.mu.Unlock()
		return &Error{Kind: KindAuthentication, Message: "Sign in to change your pattern."}
	}
	current, next := f.verified.Clone(), f.next.Snapshot()
	gen, _ := f.inflight.begin()
	f.mu.Unlock()

	err := f.backend.ChangeCredential(ctx, user.ID, current, next)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.inflight.finish(gen) {
		return ErrStale
	}
	if err != nil {
		fe := translate(err, msgVerificationFailed)
		if fe.Kind == KindAuthentication || fe.Kind == KindValidation {
			f.reset()
		}
		f.log.Info(ctx, "credential change failed", "kind", fe.Kind.String())
		return fe
	}

	f.reset()
	f.step = StepDone
	f.log.Info(ctx, "credential changed", "user_id", user.ID)
	return nil
}

// Back moves one step back, discarding the buffer of the step left.
func (f *PasswordChange) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inflight.busy {
		return ErrBusy
	}
	switch f.step {
	case StepCaptureNew:
		f.next.Clear()
		f.verified = nil
		f.step = StepVerifyCurrent
	case StepConfirmNew:
		f.confirm.Clear()
		f.step = StepCaptureNew
	case StepCommit:
		f.confirm.Clear()
		f.step = StepConfirmNew
	}
	return nil
}

// Cancel returns to StepVerifyCurrent with every buffer cleared. A pending
// submission will end with ErrStale.
func (f *PasswordChange) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight.abandon()
	f.reset()
}

func (f *PasswordChange) precheck(step Step) error {
	if f.inflight.busy {
		return ErrBusy
	}
	if f.step != step {
		return ErrWrongStep
	}
	return nil
}

func (f *PasswordChange) reset() {
	f.current.Clear()
	f.next.Clear()
	f.confirm.Clear()
	f.verified = nil
	f.step = StepVerifyCurrent
}
