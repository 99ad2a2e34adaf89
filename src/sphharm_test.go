package shac

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestACNBijection(t *testing.T) {
	// Forward: every (l, m) maps into the channel range, and back.
	var seen = make(map[int]bool)
	for l := 0; l <= MaxOrder; l++ {
		for m := -l; m <= l; m++ {
			var k = ACN(l, m)
			require.GreaterOrEqual(t, k, 0)
			require.Less(t, k, ChannelCount(MaxOrder))
			require.False(t, seen[k], "ACN(%d,%d) collides", l, m)
			seen[k] = true

			var gotL, gotM = ACNDegree(k)
			assert.Equal(t, l, gotL)
			assert.Equal(t, m, gotM)
		}
	}
	assert.Len(t, seen, ChannelCount(MaxOrder))
}

func TestACNBijectionRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var k = rapid.IntRange(0, ChannelCount(MaxOrder)-1).Draw(t, "k")
		var l, m = ACNDegree(k)
		assert.GreaterOrEqual(t, m, -l)
		assert.LessOrEqual(t, m, l)
		assert.Equal(t, k, ACN(l, m))
	})
}

func TestSN3DSanity(t *testing.T) {
	var h = NewHarmonics(MaxOrder, SN3D)
	rapid.Check(t, func(t *rapid.T) {
		var az = rapid.Float64Range(-math.Pi, math.Pi).Draw(t, "az")
		var el = rapid.Float64Range(-math.Pi/2, math.Pi/2).Draw(t, "el")
		assert.InDelta(t, 1.0, h.Eval(0, 0, az, el), 1e-12)
	})
}

func TestN3DRatio(t *testing.T) {
	var sn = NewHarmonics(MaxOrder, SN3D)
	var n3 = NewHarmonics(MaxOrder, N3D)
	rapid.Check(t, func(t *rapid.T) {
		var l = rapid.IntRange(0, MaxOrder).Draw(t, "l")
		var m = rapid.IntRange(-l, l).Draw(t, "m")
		var az = rapid.Float64Range(-math.Pi, math.Pi).Draw(t, "az")
		var el = rapid.Float64Range(-math.Pi/2, math.Pi/2).Draw(t, "el")

		var want = math.Sqrt(float64(2*l+1)) * sn.Eval(l, m, az, el)
		var got = n3.Eval(l, m, az, el)
		if math.Abs(want) > 1e-9 {
			assert.InEpsilon(t, want, got, 1e-6)
		} else {
			assert.InDelta(t, want, got, 1e-9)
		}
	})
}

// TestFirstOrderAxes pins the channel layout: W is omni, and the three
// first-order channels point up (ACN 1), front (ACN 2), and right (ACN 3).
func TestFirstOrderAxes(t *testing.T) {
	var h = NewHarmonics(1, SN3D)

	tests := []struct {
		name   string
		az, el float64
		want   [4]float64
	}{
		{"front", 0, 0, [4]float64{1, 0, 1, 0}},
		{"right", math.Pi / 2, 0, [4]float64{1, 0, 0, 1}},
		{"left", -math.Pi / 2, 0, [4]float64{1, 0, 0, -1}},
		{"behind", math.Pi, 0, [4]float64{1, 0, -1, 0}},
		{"up", 0, math.Pi / 2, [4]float64{1, 1, 0, 0}},
		{"down", 0, -math.Pi / 2, [4]float64{1, -1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [4]float64
			h.Coefficients(tt.az, tt.el, got[:])
			for k := 0; k < 4; k++ {
				assert.InDelta(t, tt.want[k], got[k], 1e-6, "channel %d", k)
			}
		})
	}
}

// TestSecondOrderRight checks a second-order direction against hand-computed
// Legendre values: at the right, P20(0) = -1/2 and the (2,2) column reaches
// sqrt(3)/2 under SN3D.
func TestSecondOrderRight(t *testing.T) {
	var h = NewHarmonics(2, SN3D)
	var got [9]float64
	h.Coefficients(math.Pi/2, 0, got[:])

	var want = [9]float64{1, 0, 0, 1, 0, 0, -0.5, 0, math.Sqrt(3) / 2}
	for k := range want {
		assert.InDelta(t, want[k], got[k], 1e-9, "channel %d", k)
	}
}

func TestCoefficientsMatchEval(t *testing.T) {
	var h = NewHarmonics(3, N3D)
	rapid.Check(t, func(t *rapid.T) {
		var az = rapid.Float64Range(-math.Pi, math.Pi).Draw(t, "az")
		var el = rapid.Float64Range(-math.Pi/2, math.Pi/2).Draw(t, "el")

		var coeff = make([]float64, ChannelCount(3))
		h.Coefficients(az, el, coeff)
		for k := range coeff {
			var l, m = ACNDegree(k)
			assert.InDelta(t, h.Eval(l, m, az, el), coeff[k], 1e-12)
		}
	})
}

func TestNewHarmonicsPanics(t *testing.T) {
	assert.Panics(t, func() { NewHarmonics(-1, SN3D) })
	assert.Panics(t, func() { NewHarmonics(MaxOrder+1, SN3D) })
	assert.Panics(t, func() { NewHarmonics(1, Normalization(9)) })
}
