// Package pattern implements the visual password core shared by the client
// and the server: click points in the reference image's intrinsic
// coordinate space, the display/intrinsic normalizer, the capture recorder
// and the tolerance matcher.
//
// A visual password is an ordered sequence of points; order is part of the
// secret. The reference image's intrinsic size is the canonical space for
// every stored pattern, so replacing the image invalidates all credentials.
package pattern

import "math"

// Default parameters of the scheme. They are configuration, not invariants
// of the algorithms below.
const (
	DefaultMaxClicks    = 5
	DefaultMinClicks    = 1
	DefaultMinNewClicks = 3
	DefaultTolerance    = 50.0
)

// Point is one click in intrinsic image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pattern is an ordered sequence of points.
type Pattern []Point

// Dimensions is a width/height pair, either the rendered size of the image
// on screen or its intrinsic pixel size.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dimensions) ready() bool {
	return isPositive(d.Width) && isPositive(d.Height)
}

// Clone returns a copy that does not share the backing array.
func (p Pattern) Clone() Pattern {
	if p == nil {
		return nil
	}
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isPositive(f float64) bool {
	return isFinite(f) && f > 0
}
