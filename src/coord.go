package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Cartesian / spherical coordinate conversions.
 *
 * Description: The codec lives in a right-handed frame with +X right,
 *		+Y up, +Z front.  Azimuth is measured around +Y from the
 *		front, increasing toward the right; elevation is measured
 *		from the horizon, +pi/2 straight up.  Distances are meters.
 *
 *------------------------------------------------------------------*/

import (
	"math"

	"github.com/golang/geo/r3"
)

// originEpsilon is the distance floor below which a direction is undefined.
const originEpsilon = 1e-9

// ToSpherical converts a Cartesian position to (azimuth, elevation,
// distance). For positions closer to the origin than originEpsilon the
// azimuth and elevation are reported as zero (front); callers that care,
// like the encoder, check the distance themselves.
func ToSpherical(v r3.Vector) (az, el, dist float64) {
	dist = v.Norm()
	if dist < originEpsilon {
		return 0, 0, dist
	}
	az = math.Atan2(v.X, v.Z)
	var y = v.Y / dist
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}
	el = math.Asin(y)
	return az, el, dist
}

// FromSpherical is the inverse of ToSpherical.
func FromSpherical(az, el, dist float64) r3.Vector {
	var sinAz, cosAz = math.Sincos(az)
	var sinEl, cosEl = math.Sincos(el)
	return r3.Vector{
		X: dist * sinAz * cosEl,
		Y: dist * sinEl,
		Z: dist * cosAz * cosEl,
	}
}
