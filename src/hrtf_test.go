package shac

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHRTFOnAxisGain(t *testing.T) {
	for _, norm := range []Normalization{SN3D, N3D} {
		for order := 1; order <= 4; order++ {
			var h = DefaultHRTF(order, norm)
			require.Equal(t, order, h.Order())
			require.Equal(t, 1, h.IRLength())

			// A source exactly on the left beam axis reaches the left
			// ear with unit gain.
			var harm = NewHarmonics(order, norm)
			var coeff = make([]float64, ChannelCount(order))
			harm.Coefficients(-45*math.Pi/180, 0, coeff)

			var gain float64
			for k := range coeff {
				gain += float64(h.left[k][0]) * coeff[k]
			}
			assert.InDelta(t, 1.0, gain, 1e-6, "norm %s order %d", norm, order)
		}
	}
}

func TestDefaultHRTFLateralBalance(t *testing.T) {
	var h = DefaultHRTF(3, SN3D)
	var harm = NewHarmonics(3, SN3D)
	var coeff = make([]float64, ChannelCount(3))
	harm.Coefficients(-60*math.Pi/180, 0, coeff) // well to the left

	var left, right float64
	for k := range coeff {
		left += float64(h.left[k][0]) * coeff[k]
		right += float64(h.right[k][0]) * coeff[k]
	}
	assert.Greater(t, left, right+0.1, "a left source must favor the left ear")
}

func TestMatrixHRTFValidation(t *testing.T) {
	_, err := MatrixHRTF(1, make([]float64, 3), make([]float64, 4))
	assert.Equal(t, ShapeMismatch, KindOf(err))
	_, err = MatrixHRTF(9, make([]float64, 100), make([]float64, 100))
	assert.Equal(t, InvalidOrder, KindOf(err))
}

func TestFIRHRTFPadding(t *testing.T) {
	var left = [][]float32{{1}, {0.5, 0.25}, {0}, {0}}
	var right = [][]float32{{0}, {0}, {0}, {1, 2, 3}}
	h, err := FIRHRTF(1, left, right)
	require.NoError(t, err)
	assert.Equal(t, 3, h.IRLength())
	assert.Equal(t, []float32{1, 0, 0}, h.left[0])
	assert.Equal(t, []float32{0.5, 0.25, 0}, h.left[1])
	assert.Equal(t, []float32{1, 2, 3}, h.right[3])
}

func TestFIRHRTFValidation(t *testing.T) {
	_, err := FIRHRTF(1, make([][]float32, 4), make([][]float32, 3))
	assert.Equal(t, ShapeMismatch, KindOf(err))

	var empty = [][]float32{{}, {}, {}, {}}
	_, err = FIRHRTF(1, empty, empty)
	assert.Equal(t, ShapeMismatch, KindOf(err))
}
