package shac

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestToSpherical(t *testing.T) {
	tests := []struct {
		name             string
		v                r3.Vector
		az, el, dist     float64
	}{
		{"front", r3.Vector{Z: 1}, 0, 0, 1},
		{"right", r3.Vector{X: 1}, math.Pi / 2, 0, 1},
		{"left", r3.Vector{X: -1}, -math.Pi / 2, 0, 1},
		{"behind", r3.Vector{Z: -1}, math.Pi, 0, 1},
		{"up", r3.Vector{Y: 1}, 0, math.Pi / 2, 1},
		{"down", r3.Vector{Y: -1}, 0, -math.Pi / 2, 1},
		{"front-right at 2m", r3.Vector{X: 2, Z: 2}, math.Pi / 4, 0, 2 * math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var az, el, dist = ToSpherical(tt.v)
			// Azimuth wraps at the back; compare as directions.
			assert.InDelta(t, 0, math.Abs(math.Remainder(az-tt.az, 2*math.Pi)), 1e-12)
			assert.InDelta(t, tt.el, el, 1e-12)
			assert.InDelta(t, tt.dist, dist, 1e-12)
		})
	}
}

func TestToSphericalOrigin(t *testing.T) {
	var az, el, dist = ToSpherical(r3.Vector{})
	assert.Zero(t, az)
	assert.Zero(t, el)
	assert.Zero(t, dist)

	// Just inside the epsilon floor behaves the same.
	az, el, dist = ToSpherical(r3.Vector{X: 1e-12})
	assert.Zero(t, az)
	assert.Zero(t, el)
	assert.Less(t, dist, originEpsilon)
}

func TestSphericalRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var v = r3.Vector{
			X: rapid.Float64Range(-100, 100).Draw(t, "x"),
			Y: rapid.Float64Range(-100, 100).Draw(t, "y"),
			Z: rapid.Float64Range(-100, 100).Draw(t, "z"),
		}
		if v.Norm() < 1e-6 {
			t.Skip("direction undefined near the origin")
		}
		var az, el, dist = ToSpherical(v)
		var back = FromSpherical(az, el, dist)
		assert.InDelta(t, v.X, back.X, 1e-9*(1+dist))
		assert.InDelta(t, v.Y, back.Y, 1e-9*(1+dist))
		assert.InDelta(t, v.Z, back.Z, 1e-9*(1+dist))
	})
}
