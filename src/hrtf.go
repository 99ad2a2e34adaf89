package shac

/*------------------------------------------------------------------
 *
 * Purpose:	HRTF tables for binaural decoding.
 *
 * Description: A table maps the ambisonic bus to two ears.  Two
 *		representations are supported, chosen when the table is
 *		loaded: a scalar matrix (one coefficient per channel per
 *		ear, a dot product per output sample) or time-domain
 *		impulse responses (per-channel FIR convolution).  The
 *		table itself is immutable and may be shared by several
 *		decoders; convolution state lives in the decoder.
 *
 *------------------------------------------------------------------*/

import "math"

// HRTF is an immutable ambisonic-to-binaural table for one order.
type HRTF struct {
	order int
	irLen int // 1 means scalar matrix

	// left[k] and right[k] are the taps for ACN channel k, irLen each.
	left  [][]float32
	right [][]float32
}

// Order returns the ambisonic order the table is sized for.
func (h *HRTF) Order() int { return h.order }

// IRLength returns the impulse response length; 1 for a scalar matrix.
func (h *HRTF) IRLength() int { return h.irLen }

// MatrixHRTF builds a scalar-matrix table. left and right must each have
// (order+1)^2 coefficients.
func MatrixHRTF(order int, left, right []float64) (*HRTF, error) {
	if order < 0 || order > MaxOrder {
		return nil, formatErr(InvalidOrder, -1, "", "order %d outside 0..%d", order, MaxOrder)
	}
	var n = ChannelCount(order)
	if len(left) != n || len(right) != n {
		return nil, formatErr(ShapeMismatch, -1, "hrtf", "need %d coefficients per ear, got %d/%d", n, len(left), len(right))
	}
	var h = &HRTF{order: order, irLen: 1, left: make([][]float32, n), right: make([][]float32, n)}
	for k := 0; k < n; k++ {
		h.left[k] = []float32{float32(left[k])}
		h.right[k] = []float32{float32(right[k])}
	}
	return h, nil
}

// FIRHRTF builds an impulse-response table. left and right must each hold
// (order+1)^2 responses; shorter responses are zero-padded to the longest.
func FIRHRTF(order int, left, right [][]float32) (*HRTF, error) {
	if order < 0 || order > MaxOrder {
		return nil, formatErr(InvalidOrder, -1, "", "order %d outside 0..%d", order, MaxOrder)
	}
	var n = ChannelCount(order)
	if len(left) != n || len(right) != n {
		return nil, formatErr(ShapeMismatch, -1, "hrtf", "need %d responses per ear, got %d/%d", n, len(left), len(right))
	}
	var irLen = 0
	for k := 0; k < n; k++ {
		if len(left[k]) > irLen {
			irLen = len(left[k])
		}
		if len(right[k]) > irLen {
			irLen = len(right[k])
		}
	}
	if irLen == 0 {
		return nil, formatErr(ShapeMismatch, -1, "hrtf", "all impulse responses are empty")
	}
	var pad = func(ir []float32) []float32 {
		var out = make([]float32, irLen)
		copy(out, ir)
		return out
	}
	var h = &HRTF{order: order, irLen: irLen, left: make([][]float32, n), right: make([][]float32, n)}
	for k := 0; k < n; k++ {
		h.left[k] = pad(left[k])
		h.right[k] = pad(right[k])
	}
	return h, nil
}

/*------------------------------------------------------------------
 *
 * Name:	DefaultHRTF
 *
 * Purpose:	Build a plain stereo decode matrix so playback works
 *		without an external HRTF dataset.
 *
 * Description:	Each ear is a max-order beam steered 45 degrees to its
 *		side, built by projection decoding.  For a basis where
 *		W is 1 on the sphere the projection weight of channel
 *		(l,m) is (2l+1) times the SN3D harmonic at the beam
 *		direction; in an N3D file the factor is already inside
 *		the basis and the weight is the N3D harmonic itself.
 *		Dividing by (order+1)^2 puts the on-axis gain at
 *		exactly 1.
 *
 *------------------------------------------------------------------*/

func DefaultHRTF(order int, norm Normalization) *HRTF {
	var n = ChannelCount(order)
	var h = NewHarmonics(order, norm)

	var beam = func(az float64) []float64 {
		var coeff = make([]float64, n)
		h.Coefficients(az, 0, coeff)
		var scale = 1 / float64(n)
		for k := range coeff {
			var l, _ = ACNDegree(k)
			var band = 1.0
			if norm == SN3D {
				band = float64(2*l + 1)
			}
			coeff[k] *= band * scale
		}
		return coeff
	}

	const earAngle = 45 * math.Pi / 180
	hrtf, _ := MatrixHRTF(order, beam(-earAngle), beam(+earAngle))
	return hrtf
}
