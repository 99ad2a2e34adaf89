package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Ambisonic rotation matrices and their realtime cache.
 *
 * Description: Rotating an ambisonic field never mixes orders: each
 *		degree l has its own (2l+1)x(2l+1) orthogonal matrix and
 *		l=0 is always identity.  The per-order matrices are built
 *		from the 3x3 spatial rotation with the Ivanic-Ruedenberg
 *		recurrence, which stays well conditioned at the orders
 *		this codec supports.
 *
 *		Building the matrices costs far more than applying them,
 *		so Apply runs through a cache keyed by quantized
 *		(yaw, pitch).  The audio thread owns the rotator; on a
 *		cache miss it computes inline, which is bounded work at
 *		order <= 7, rather than waiting on anyone.
 *
 *------------------------------------------------------------------*/

import (
	"container/list"
	"math"
)

const (
	// rotCacheQuantum is the cache bin width: 1 degree.
	rotCacheQuantum = math.Pi / 180

	// rotCacheMaxEntries bounds the cache; least recently used bins are
	// evicted first.
	rotCacheMaxEntries = 1024
)

// bandMatrices holds one rotation: a matrix per order, row-major,
// indexed by (m'+l)*(2l+1) + (m+l).
type bandMatrices [][]float64

// Rotator builds and caches per-order rotation matrices for one ambisonic
// order. It is not safe for concurrent use; each decoder owns its own.
type Rotator struct {
	order int

	cache map[rotKey]*list.Element
	lru   *list.List // front is most recently used
}

type rotKey struct {
	yaw, pitch int32
}

type rotEntry struct {
	key   rotKey
	bands bandMatrices
}

// NewRotator returns a rotator for the given ambisonic order (0..MaxOrder).
func NewRotator(order int) *Rotator {
	if order < 0 || order > MaxOrder {
		panic("shac: rotator order out of range")
	}
	return &Rotator{
		order: order,
		cache: make(map[rotKey]*list.Element),
		lru:   list.New(),
	}
}

// Order returns the ambisonic order this rotator was built for.
func (r *Rotator) Order() int { return r.order }

/*------------------------------------------------------------------
 *
 * Name:	Apply
 *
 * Purpose:	Rotate an interleaved ambisonic block in place.
 *
 * Inputs:	block	- frames * (order+1)^2 interleaved samples.
 *		frames	- number of frames to process.
 *		yaw	- field rotation around +Y, radians.  Positive yaw
 *			  moves a source at the front toward the right.
 *		pitch	- field rotation around +X, applied after yaw.
 *			  Positive pitch moves a source at the front upward.
 *
 * Description: Work per frame is a fixed set of small dense mat-vecs,
 *		linear in the frame count.  Angles are quantized to the
 *		cache bin width; navigation updates arrive per block, so
 *		the quantization stays below audibility.
 *
 *		This runs on the audio thread and takes no locks.  A
 *		cache hit allocates nothing; a cache miss allocates the
 *		matrices and the cache entry for the new bin.
 *
 *------------------------------------------------------------------*/

func (r *Rotator) Apply(block []float32, frames int, yaw, pitch float64) {
	if r.order == 0 || frames == 0 {
		return
	}
	var bands = r.matricesFor(yaw, pitch)
	applyBands(bands, block, frames, r.order)
}

func applyBands(bands bandMatrices, block []float32, frames, order int) {
	var n = ChannelCount(order)
	var scratch [64]float64 // (MaxOrder+1)^2 = 64 channels at most

	for s := 0; s < frames; s++ {
		var frame = block[s*n : s*n+n]
		// Order 0 is identity; start at l=1.
		for l := 1; l <= order; l++ {
			var w = 2*l + 1
			var base = l * l
			var mat = bands[l]
			for i := 0; i < w; i++ {
				var acc float64
				var row = mat[i*w : i*w+w]
				for j := 0; j < w; j++ {
					acc += row[j] * float64(frame[base+j])
				}
				scratch[i] = acc
			}
			for i := 0; i < w; i++ {
				frame[base+i] = float32(scratch[i])
			}
		}
	}
}

// matricesFor returns the band matrices for quantized (yaw, pitch),
// consulting the LRU cache.
func (r *Rotator) matricesFor(yaw, pitch float64) bandMatrices {
	var key = rotKey{
		yaw:   int32(math.Round(yaw / rotCacheQuantum)),
		pitch: int32(math.Round(pitch / rotCacheQuantum)),
	}
	if el, ok := r.cache[key]; ok {
		r.lru.MoveToFront(el)
		return el.Value.(*rotEntry).bands
	}

	var bands = r.BandMatrices(float64(key.yaw)*rotCacheQuantum, float64(key.pitch)*rotCacheQuantum)
	r.cache[key] = r.lru.PushFront(&rotEntry{key: key, bands: bands})
	if r.lru.Len() > rotCacheMaxEntries {
		var oldest = r.lru.Back()
		r.lru.Remove(oldest)
		delete(r.cache, oldest.Value.(*rotEntry).key)
	}
	return bands
}

// CacheLen reports how many rotations are currently cached.
func (r *Rotator) CacheLen() int { return r.lru.Len() }

/*------------------------------------------------------------------
 *
 * Name:	BandMatrices
 *
 * Purpose:	Compute exact per-order rotation matrices, bypassing
 *		the cache.
 *
 * Description:	The 3x3 spatial rotation is Rx(pitch) * Ry(yaw): yaw
 *		around +Y first, then pitch around +X.  Band 1 is a
 *		reindexing of that matrix into the (m=-1,0,+1) = (Y,Z,X)
 *		channel order; bands 2..order follow from the recurrence.
 *
 *------------------------------------------------------------------*/

func (r *Rotator) BandMatrices(yaw, pitch float64) bandMatrices {
	var sy, cy = math.Sincos(yaw)
	var sp, cp = math.Sincos(pitch)

	// Ry(yaw): front (0,0,1) goes to (sin yaw, 0, cos yaw).
	var ry = mat3{
		{cy, 0, sy},
		{0, 1, 0},
		{-sy, 0, cy},
	}
	// Rx(pitch): front goes to (0, sin pitch, cos pitch).
	var rx = mat3{
		{1, 0, 0},
		{0, cp, sp},
		{0, -sp, cp},
	}
	return shRotation(r.order, mat3mul(rx, ry))
}

type mat3 [3][3]float64

func mat3mul(a, b mat3) mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return out
}

/*
 * Ivanic, Ruedenberg: "Rotation Matrices for Real Spherical Harmonics.
 * Direct Determination by Recursion" (with the published erratum).
 * Bands are indexed (m'+l)*(2l+1) + (m+l).
 */

func shRotation(order int, rot mat3) bandMatrices {
	var bands = make(bandMatrices, order+1)
	bands[0] = []float64{1}
	if order == 0 {
		return bands
	}

	// Band 1: real SH order m = -1, 0, +1 corresponds to the
	// world axes y, z, x.
	var axis = [3]int{1, 2, 0}
	var b1 = make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b1[i*3+j] = rot[axis[i]][axis[j]]
		}
	}
	bands[1] = b1

	for l := 2; l <= order; l++ {
		var w = 2*l + 1
		var band = make([]float64, w*w)
		for m := -l; m <= l; m++ {
			for n := -l; n <= l; n++ {
				band[(m+l)*w+(n+l)] = shEntry(bands, l, m, n)
			}
		}
		bands[l] = band
	}
	return bands
}

func shEntry(bands bandMatrices, l, m, n int) float64 {
	var am = m
	if am < 0 {
		am = -am
	}

	var denom float64
	if n == l || n == -l {
		denom = float64(2*l) * float64(2*l-1)
	} else {
		denom = float64(l+n) * float64(l-n)
	}

	var u = math.Sqrt(float64((l+m)*(l-m)) / denom)
	var v, w float64
	if m == 0 {
		// The (1 - 2*delta(m,0)) factor from the erratum flips the sign.
		v = -0.5 * math.Sqrt(float64(2*(l-1)*l)/denom)
		w = 0
	} else {
		v = 0.5 * math.Sqrt(float64((l+am-1)*(l+am))/denom)
		w = -0.5 * math.Sqrt(float64((l-am-1)*(l-am))/denom)
	}

	var total float64
	if u != 0 {
		total += u * shTermU(bands, l, m, n)
	}
	if v != 0 {
		total += v * shTermV(bands, l, m, n)
	}
	if w != 0 {
		total += w * shTermW(bands, l, m, n)
	}
	return total
}

// shP is the P function of the recurrence: it lifts a band l-1 entry
// through row i of the band 1 matrix.
func shP(bands bandMatrices, i, l, a, b int) float64 {
	var b1 = bands[1]
	var ri1 = b1[(i+1)*3+2]  // R1(i, +1)
	var rim1 = b1[(i+1)*3+0] // R1(i, -1)
	var ri0 = b1[(i+1)*3+1]  // R1(i, 0)

	var prev = bands[l-1]
	var pw = 2*(l-1) + 1
	var at = func(m, n int) float64 {
		return prev[(m+l-1)*pw+(n+l-1)]
	}

	switch b {
	case l:
		return ri1*at(a, l-1) - rim1*at(a, -l+1)
	case -l:
		return ri1*at(a, -l+1) + rim1*at(a, l-1)
	default:
		return ri0 * at(a, b)
	}
}

func shTermU(bands bandMatrices, l, m, n int) float64 {
	return shP(bands, 0, l, m, n)
}

func shTermV(bands bandMatrices, l, m, n int) float64 {
	switch {
	case m == 0:
		return shP(bands, 1, l, 1, n) + shP(bands, -1, l, -1, n)
	case m > 0:
		var p0 = shP(bands, 1, l, m-1, n)
		if m == 1 {
			return p0 * math.Sqrt2
		}
		return p0 - shP(bands, -1, l, -m+1, n)
	default:
		var p1 = shP(bands, -1, l, -m-1, n)
		if m == -1 {
			return p1 * math.Sqrt2
		}
		return shP(bands, 1, l, m+1, n) + p1
	}
}

func shTermW(bands bandMatrices, l, m, n int) float64 {
	switch {
	case m > 0:
		return shP(bands, 1, l, m+1, n) + shP(bands, -1, l, -m-1, n)
	default: // m < 0; shEntry never calls W with m == 0
		return shP(bands, 1, l, m-1, n) - shP(bands, -1, l, -m+1, n)
	}
}
