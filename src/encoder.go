package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Encode a positioned mono source into ambisonic channels.
 *
 * Description: The spherical harmonic coefficients depend only on the
 *		source direction, so they are evaluated once and the
 *		per-sample work is a single multiply broadcast across
 *		the channel set.  The encoder runs offline; level
 *		management is the caller's problem and nothing here
 *		clips.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/golang/geo/r3"
)

// DefaultMinDistance is the distance floor for the optional 1/r gain.
const DefaultMinDistance = 1.0

// EncodeOptions control EncodeMono.
type EncodeOptions struct {
	// DistanceGain enables 1/max(r, MinDistance) source attenuation.
	DistanceGain bool

	// MinDistance clamps the attenuation; zero means DefaultMinDistance.
	MinDistance float64
}

/*------------------------------------------------------------------
 *
 * Name:	EncodeMono
 *
 * Purpose:	Produce an interleaved ambisonic block from a mono
 *		signal and a source position.
 *
 * Inputs:	audio	- mono samples.
 *		pos	- source position, meters, +X right +Y up +Z front.
 *		order	- ambisonic order, 1..7.
 *		norm	- normalization scheme for the whole file.
 *		opts	- optional distance gain.
 *
 * Returns:	frames * (order+1)^2 interleaved float32 samples in ACN
 *		channel order, ready to append as a container layer.
 *
 * Errors:	InvalidOrder or InvalidNormalization for bad parameters.
 *		A source at the origin has no direction; it is placed
 *		at the front and a warning is logged.
 *
 *------------------------------------------------------------------*/

func EncodeMono(audio []float32, pos r3.Vector, order int, norm Normalization, opts EncodeOptions) ([]float32, error) {
	if order < MinOrder || order > MaxOrder {
		return nil, formatErr(InvalidOrder, -1, "", "order %d outside %d..%d", order, MinOrder, MaxOrder)
	}
	if !norm.Valid() {
		return nil, formatErr(InvalidNormalization, -1, "", "scheme %d", uint16(norm))
	}

	var az, el, dist = ToSpherical(pos)
	if dist < originEpsilon {
		logger.Warn("source at origin has no direction, encoding at front",
			"x", pos.X, "y", pos.Y, "z", pos.Z)
	}

	var n = ChannelCount(order)
	var h = NewHarmonics(order, norm)
	var coeff = make([]float64, n)
	h.Coefficients(az, el, coeff)

	var gain = 1.0
	if opts.DistanceGain {
		var rmin = opts.MinDistance
		if rmin <= 0 {
			rmin = DefaultMinDistance
		}
		var r = dist
		if r < rmin {
			r = rmin
		}
		gain = 1 / r
	}

	// Fold the gain into the coefficients so the sample loop is one
	// multiply per channel.
	var ck = make([]float32, n)
	for k := 0; k < n; k++ {
		ck[k] = float32(coeff[k] * gain)
	}

	var out = make([]float32, len(audio)*n)
	for s, v := range audio {
		var frame = out[s*n : s*n+n]
		for k := 0; k < n; k++ {
			frame[k] = v * ck[k]
		}
	}
	return out, nil
}
