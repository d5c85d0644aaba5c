package flows

import (
	"context"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/client/session"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

type Step int

const (
	StepCollectUsername Step = iota
	StepCaptureClicks
	StepSubmit
	StepVerifyCurrent
	StepCaptureNew
	StepConfirmNew
	StepCommit
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepCollectUsername:
		return "collect-username"
	case StepCaptureClicks:
		return "capture-clicks"
	case StepSubmit:
		return "submit"
	case StepVerifyCurrent:
		return "verify-current"
	case StepCaptureNew:
		return "capture-new"
	case StepConfirmNew:
		return "confirm-new"
	case StepCommit:
		return "commit"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Backend is the part of the transport used by the flows.
type Backend interface {
	Register(ctx context.Context, username string, p pattern.Pattern) (*client.AuthResult, error)
	Verify(ctx context.Context, username string, p pattern.Pattern) (*client.AuthResult, error)
	ChangeCredential(ctx context.Context, userID string, current, next pattern.Pattern) error
}

// Session receives the identities established by the flows.
type Session interface {
	Login(ctx context.Context, res *client.AuthResult) error
	CurrentUser() *session.User
}

// Settings are the pattern parameters shared by every flow.
type Settings struct {
	Tolerance    float64
	MinClicks    int
	MaxClicks    int
	MinNewClicks int
}

// inflight tracks the single submission a flow may have outstanding.
type inflight struct {
	busy bool
	gen  uint64
}

// begin marks a submission as started and returns its generation.
func (f *inflight) begin() (uint64, error) {
	if f.busy {
		return 0, ErrBusy
	}
	f.busy = true
	return f.gen, nil
}

// finish reports whether the submission of generation gen is still current.
func (f *inflight) finish(gen uint64) bool {
	if gen != f.gen {
		return false
	}
	f.busy = false
	return true
}

// abandon drops any outstanding submission.
func (f *inflight) abandon() {
	f.gen++
	f.busy = false
}
