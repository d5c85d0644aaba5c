package pattern

import (
	"errors"
	"fmt"
)

// ErrMalformedPattern is wrapped by every ValidationError.
var ErrMalformedPattern = errors.New("malformed click pattern")

// ErrInvalidLimits reports a misconfigured Limits or tolerance. It is a
// caller error and never wraps ErrMalformedPattern.
var ErrInvalidLimits = errors.New("invalid pattern limits")

// Limits bounds what Validate accepts. Zero Bounds disables the range check.
type Limits struct {
	Min    int
	Max    int
	Bounds Dimensions
}

// ValidationError describes why a pattern was rejected.
type ValidationError struct {
	Index  int // offending point, -1 for length problems
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedPattern, e.Reason)
	}
	return fmt.Sprintf("%s: point %d: %s", ErrMalformedPattern, e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrMalformedPattern }

// Check reports whether l can be used to validate anything: both length
// bounds must be at least one and Min must not exceed Max.
func (l Limits) Check() error {
	switch {
	case l.Min < 1:
		return fmt.Errorf("%w: minimum length %d is below 1", ErrInvalidLimits, l.Min)
	case l.Max < 1:
		return fmt.Errorf("%w: maximum length %d is below 1", ErrInvalidLimits, l.Max)
	case l.Min > l.Max:
		return fmt.Errorf("%w: minimum length %d exceeds maximum %d", ErrInvalidLimits, l.Min, l.Max)
	}
	return nil
}

// CheckTolerance rejects tolerances Matches cannot work with.
func CheckTolerance(tolerance float64) error {
	if !isFinite(tolerance) || tolerance < 0 {
		return fmt.Errorf("%w: tolerance %v must be a finite non-negative number", ErrInvalidLimits, tolerance)
	}
	return nil
}

// Validate checks a pattern received from outside the process. Unusable
// limits are reported as ErrInvalidLimits before the pattern is looked at.
func Validate(p Pattern, l Limits) error {
	if err := l.Check(); err != nil {
		return err
	}
	if len(p) < l.Min {
		return &ValidationError{Index: -1, Reason: fmt.Sprintf("at least %d points required, got %d", l.Min, len(p))}
	}
	if len(p) > l.Max {
		return &ValidationError{Index: -1, Reason: fmt.Sprintf("at most %d points allowed, got %d", l.Max, len(p))}
	}
	checkBounds := l.Bounds.ready()
	for i, pt := range p {
		if !isFinite(pt.X) || !isFinite(pt.Y) {
			return &ValidationError{Index: i, Reason: "coordinate is not a finite number"}
		}
		if checkBounds && (pt.X < 0 || pt.Y < 0 || pt.X > l.Bounds.Width || pt.Y > l.Bounds.Height) {
			return &ValidationError{Index: i, Reason: "coordinate outside the reference image"}
		}
	}
	return nil
}
