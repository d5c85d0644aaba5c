package pattern

import "math"

// Distance is the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Matches reports whether attempt reproduces stored within tolerance.
//
// Patterns of different length never match, and empty patterns never match.
// Points are compared pairwise in order with no realignment, so the right
// points clicked in the wrong order are rejected. The boundary is inclusive:
// a point exactly tolerance away still matches.
func Matches(stored, attempt Pattern, tolerance float64) bool {
	if len(stored) != len(attempt) || len(stored) == 0 {
		return false
	}
	if !isFinite(tolerance) || tolerance < 0 {
		return false
	}
	for i := range stored {
		d := Distance(stored[i], attempt[i])
		if !(d <= tolerance) {
			return false
		}
	}
	return true
}
