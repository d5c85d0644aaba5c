package pattern

import "errors"

// ErrImageNotReady is returned when the reference image has no usable size
// yet (not loaded, or rendered with a zero dimension).
var ErrImageNotReady = errors.New("reference image not ready")

// ToIntrinsic converts a point on the rendered image into intrinsic image
// coordinates. Each axis is scaled independently, so responsive layouts that
// stretch the image non-uniformly are handled.
func ToIntrinsic(display Point, rendered, intrinsic Dimensions) (Point, error) {
	if !rendered.ready() || !intrinsic.ready() {
		return Point{}, ErrImageNotReady
	}
	return Point{
		X: display.X * (intrinsic.Width / rendered.Width),
		Y: display.Y * (intrinsic.Height / rendered.Height),
	}, nil
}

// ToDisplay is the inverse of ToIntrinsic.
func ToDisplay(p Point, rendered, intrinsic Dimensions) (Point, error) {
	if !rendered.ready() || !intrinsic.ready() {
		return Point{}, ErrImageNotReady
	}
	return Point{
		X: p.X * (rendered.Width / intrinsic.Width),
		Y: p.Y * (rendered.Height / intrinsic.Height),
	}, nil
}
