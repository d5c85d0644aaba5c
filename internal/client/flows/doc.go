// Package flows implements the credential lifecycle: registration, login
// and password change.
//
// Each flow is a linear state machine owned by one UI component. Captured
// clicks live in pattern.Recorder buffers exposed through Active. Only one
// backend submission may be in flight per flow instance; a second one gets
// ErrBusy. Cancel discards every buffer and bumps a generation counter, so
// the result of a submission that was pending at that moment is dropped
// with ErrStale and never reaches the session.
//
// Backend failures are returned as *Error values carrying a Kind and a
// message that is safe to show to the user.
package flows
