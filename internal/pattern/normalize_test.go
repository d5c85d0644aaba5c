package pattern

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToIntrinsic_ScalesPerAxis(t *testing.T) {
	rendered := Dimensions{Width: 400, Height: 300}
	intrinsic := Dimensions{Width: 800, Height: 900}

	got, err := ToIntrinsic(Point{X: 100, Y: 100}, rendered, intrinsic)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 200, Y: 300}, got)
}

func TestToIntrinsic_ImageNotReady(t *testing.T) {
	ok := Dimensions{Width: 10, Height: 10}
	tests := []struct {
		name      string
		rendered  Dimensions
		intrinsic Dimensions
	}{
		{"zero rendered width", Dimensions{Width: 0, Height: 10}, ok},
		{"zero rendered height", Dimensions{Width: 10, Height: 0}, ok},
		{"image not loaded", ok, Dimensions{}},
		{"nan size", Dimensions{Width: math.NaN(), Height: 10}, ok},
		{"negative size", ok, Dimensions{Width: -1, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToIntrinsic(Point{X: 1, Y: 1}, tt.rendered, tt.intrinsic)
			require.ErrorIs(t, err, ErrImageNotReady)

			_, err = ToDisplay(Point{X: 1, Y: 1}, tt.rendered, tt.intrinsic)
			require.ErrorIs(t, err, ErrImageNotReady)
		})
	}
}

func TestNormalizer_RoundTrip(t *testing.T) {
	sizes := []struct{ rendered, intrinsic Dimensions }{
		{Dimensions{Width: 640, Height: 480}, Dimensions{Width: 1920, Height: 1080}},
		{Dimensions{Width: 333, Height: 517}, Dimensions{Width: 1024, Height: 768}},
		{Dimensions{Width: 1920.5, Height: 1080.25}, Dimensions{Width: 800, Height: 600}},
		{Dimensions{Width: 1, Height: 1}, Dimensions{Width: 4096, Height: 4096}},
	}
	points := []Point{{0, 0}, {1, 1}, {123.456, 78.9}, {639.99, 479.99}}

	for _, s := range sizes {
		for _, p := range points {
			in, err := ToIntrinsic(p, s.rendered, s.intrinsic)
			require.NoError(t, err)
			back, err := ToDisplay(in, s.rendered, s.intrinsic)
			require.NoError(t, err)
			assert.InDelta(t, p.X, back.X, 1e-9)
			assert.InDelta(t, p.Y, back.Y, 1e-9)
		}
	}
}

func TestToIntrinsic_Deterministic(t *testing.T) {
	r := Dimensions{Width: 317, Height: 211}
	i := Dimensions{Width: 1024, Height: 683}
	a, err := ToIntrinsic(Point{X: 55.5, Y: 12.25}, r, i)
	require.NoError(t, err)
	for n := 0; n < 100; n++ {
		b, err := ToIntrinsic(Point{X: 55.5, Y: 12.25}, r, i)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}
