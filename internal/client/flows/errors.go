package flows

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

var (
	// ErrBusy is returned while a submission of the same flow is in flight.
	ErrBusy = errors.New("submission already in progress")
	// ErrStale is returned to a submission whose flow was cancelled meanwhile.
	ErrStale = errors.New("flow was cancelled")
	// ErrWrongStep is returned when an operation does not apply to the
	// current step.
	ErrWrongStep = errors.New("operation not allowed in the current step")
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindConflict
	KindConnectivity
	KindConsistency
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindConflict:
		return "conflict"
	case KindConnectivity:
		return "connectivity"
	case KindConsistency:
		return "consistency"
	case KindThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// Error is what the UI sees. Message never contains backend text; the
// underlying error is kept for errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

const (
	msgInvalidCredentials = "Username or click pattern is incorrect."
	msgVerificationFailed = "The current click pattern did not match."
	msgUsernameTaken      = "This username is already taken."
	msgThrottled          = "Too many attempts. Please wait and try again."
	msgConnectivity       = "Could not reach the server. Please try again."
	msgRejected           = "The server rejected the request. Please start over."
	msgConfirmMismatch    = "The confirmation does not match the new pattern. Please repeat it."
)

func validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Err: pattern.ErrMalformedPattern}
}

// translate turns a backend error into an *Error. authMessage is used for
// authentication failures so login never tells which half was wrong.
func translate(err error, authMessage string) *Error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrVerificationFailed),
		errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, common.ErrorNotFound):
		return &Error{Kind: KindAuthentication, Message: authMessage, Err: err}
	case errors.Is(err, common.ErrUsernameTaken):
		return &Error{Kind: KindConflict, Message: msgUsernameTaken, Err: err}
	case errors.Is(err, common.ErrTooManyAttempts):
		return &Error{Kind: KindThrottled, Message: msgThrottled, Err: err}
	case errors.Is(err, client.ErrInvalidArgument),
		errors.Is(err, common.ErrInvalidUsername),
		errors.Is(err, pattern.ErrMalformedPattern):
		return &Error{Kind: KindValidation, Message: msgRejected, Err: err}
	default:
		return &Error{Kind: KindConnectivity, Message: msgConnectivity, Err: err}
	}
}
