package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Real spherical harmonic evaluation for orders 0..7.
 *
 * Description: The harmonic basis is anchored to the listener frame:
 *		the polar axis is +Z (front), with the in-band angle
 *		measured from +X (right) toward +Y (up).  With that
 *		choice a source dead ahead excites only the m=0 channel
 *		of each order, which is what makes yaw navigation
 *		concentrate energy the way the decoder expects.
 *
 *		Associated Legendre values come from the standard
 *		three-term recurrences, which are numerically stable
 *		well past order 7.  The Condon-Shortley phase is omitted,
 *		as is conventional for audio.
 *
 *		Normalization factors involve factorials, so they are
 *		computed once per (order, scheme) pair and reused for
 *		every sample; see NewHarmonics.
 *
 *------------------------------------------------------------------*/

import (
	"math"
)

// Harmonics evaluates real spherical harmonics at a fixed order and
// normalization scheme. It is immutable after construction and safe for
// concurrent use.
type Harmonics struct {
	order int
	norm  Normalization

	// factor[ACN(l,m)] is the normalization factor N(l,m) for the scheme.
	factor []float64
}

// NewHarmonics builds the normalization tables for the given order (0..7)
// and scheme. Order outside 0..MaxOrder or an unknown scheme is a
// programming error and panics.
func NewHarmonics(order int, norm Normalization) *Harmonics {
	if order < 0 || order > MaxOrder {
		panic("shac: harmonic order out of range")
	}
	if !norm.Valid() {
		panic("shac: unknown normalization scheme")
	}

	// Factorials up to (2*MaxOrder)! fit comfortably in float64.
	var fact [2*MaxOrder + 1]float64
	fact[0] = 1
	for i := 1; i < len(fact); i++ {
		fact[i] = fact[i-1] * float64(i)
	}

	var h = &Harmonics{
		order:  order,
		norm:   norm,
		factor: make([]float64, ChannelCount(order)),
	}

	for l := 0; l <= order; l++ {
		for m := -l; m <= l; m++ {
			var am = m
			if am < 0 {
				am = -am
			}
			// SN3D: sqrt((2 - delta_m0) * (l-|m|)! / (l+|m|)!).
			// The sqrt(2) for m != 0 lives here, not in the trig factor.
			var delta = 0.0
			if m == 0 {
				delta = 1.0
			}
			var f = math.Sqrt((2 - delta) * fact[l-am] / fact[l+am])
			if norm == N3D {
				f *= math.Sqrt(float64(2*l + 1))
			}
			h.factor[ACN(l, m)] = f
		}
	}
	return h
}

// Order returns the maximum degree this table was built for.
func (h *Harmonics) Order() int { return h.order }

// Norm returns the normalization scheme this table was built for.
func (h *Harmonics) Norm() Normalization { return h.norm }

/*------------------------------------------------------------------
 *
 * Name:	polarAngles
 *
 * Purpose:	Map the codec's (azimuth, elevation) pair onto the
 *		harmonic frame.
 *
 * Inputs:	az - azimuth in radians, 0 front, +pi/2 right.
 *		el - elevation in radians, 0 horizon, +pi/2 up.
 *
 * Returns:	cosTheta - cosine of the angle from the front axis.
 *		psi      - angle around the front axis, 0 at +X (right),
 *			   +pi/2 at +Y (up).
 *
 * Description: The direction unit vector is
 *		(sin az * cos el, sin el, cos az * cos el).
 *		On the front axis psi is undefined; atan2(0,0)=0 is fine
 *		because every m != 0 harmonic is zero there anyway.
 *
 *------------------------------------------------------------------*/

func polarAngles(az, el float64) (cosTheta, psi float64) {
	var sinAz, cosAz = math.Sincos(az)
	var sinEl, cosEl = math.Sincos(el)
	cosTheta = cosAz * cosEl
	psi = math.Atan2(sinEl, sinAz*cosEl)
	return cosTheta, psi
}

// legendre computes the associated Legendre value P_l^m(x) for m >= 0,
// without the Condon-Shortley phase.
func legendre(l, m int, x float64) float64 {
	// P(m,m) = (2m-1)!! * (1-x^2)^(m/2)
	var s2 = (1 - x) * (1 + x)
	if s2 < 0 {
		s2 = 0 // |x| can creep past 1 by an ulp
	}
	var somx2 = math.Sqrt(s2)
	var pmm = 1.0
	var odd = 1.0
	for i := 0; i < m; i++ {
		pmm *= odd * somx2
		odd += 2
	}
	if l == m {
		return pmm
	}

	// P(m+1,m) = x * (2m+1) * P(m,m)
	var pmmp1 = x * float64(2*m+1) * pmm
	if l == m+1 {
		return pmmp1
	}

	// P(l,m) = ((2l-1) x P(l-1,m) - (l+m-1) P(l-2,m)) / (l-m)
	var pll float64
	for ll := m + 2; ll <= l; ll++ {
		pll = (float64(2*ll-1)*x*pmmp1 - float64(ll+m-1)*pmm) / float64(ll-m)
		pmm = pmmp1
		pmmp1 = pll
	}
	return pll
}

// Eval returns the real spherical harmonic Y_l^m at the given azimuth and
// elevation. Preconditions: 0 <= l <= Order, -l <= m <= l. Violations are
// programming errors; the caller guarantees them (the encoder iterates the
// ACN range, which cannot go out of bounds).
func (h *Harmonics) Eval(l, m int, az, el float64) float64 {
	var cosTheta, psi = polarAngles(az, el)
	var am = m
	if am < 0 {
		am = -am
	}
	var p = legendre(l, am, cosTheta)
	var t float64
	switch {
	case m > 0:
		t = math.Cos(float64(m) * psi)
	case m < 0:
		t = math.Sin(float64(am) * psi)
	default:
		t = 1
	}
	return h.factor[ACN(l, m)] * p * t
}

/*------------------------------------------------------------------
 *
 * Name:	Coefficients
 *
 * Purpose:	Evaluate the whole basis at one direction.
 *
 * Inputs:	az, el	- direction angles, radians.
 *		dst	- destination for (order+1)^2 values in ACN order.
 *			  Must have at least that many elements.
 *
 * Description:	This is the per-source hot path of the encoder: the
 *		Legendre recurrence runs once per (l,m) column and the
 *		sin/cos terms once per direction, so encoding cost per
 *		source is independent of the signal length.
 *
 *------------------------------------------------------------------*/

func (h *Harmonics) Coefficients(az, el float64, dst []float64) {
	var n = ChannelCount(h.order)
	if len(dst) < n {
		panic("shac: coefficient buffer too small")
	}
	var cosTheta, psi = polarAngles(az, el)

	for l := 0; l <= h.order; l++ {
		for m := 0; m <= l; m++ {
			var p = legendre(l, m, cosTheta)
			if m == 0 {
				dst[ACN(l, 0)] = h.factor[ACN(l, 0)] * p
				continue
			}
			var s, c = math.Sincos(float64(m) * psi)
			dst[ACN(l, m)] = h.factor[ACN(l, m)] * p * c
			dst[ACN(l, -m)] = h.factor[ACN(l, -m)] * p * s
		}
	}
}
