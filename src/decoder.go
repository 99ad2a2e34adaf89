package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Realtime decoder: parsed layers in, stereo blocks out.
 *
 * Description: Open acquires the mix bus, the rotation cache, and the
 *		FIR history.  ProduceBlock then runs lock-free so it can
 *		live inside an audio callback; its only allocation is on
 *		a rotation-cache miss, which builds that bin's matrices.
 *
 *		Per block: snapshot the pose, re-derive each layer's
 *		distance gain, mix the layers into one ambisonic bus,
 *		rotate the bus against the listener orientation, and
 *		decode to two ears through the HRTF table.  Translation
 *		is handled as gain only; the encoded directions stay
 *		fixed, which is the documented limitation of the format.
 *
 *		Once open, the block path cannot fail.  Non-finite
 *		samples read from the file are zeroed at the output.
 *
 *------------------------------------------------------------------*/

import (
	"math"
)

// DefaultBlockSize is the block size used when the options leave it zero.
const DefaultBlockSize = 512

// DecoderOptions control Open.
type DecoderOptions struct {
	// BlockSize is the maximum frames per ProduceBlock call.
	// Zero means DefaultBlockSize.
	BlockSize int

	// MinDistance clamps the per-layer distance gain; zero means
	// DefaultMinDistance.
	MinDistance float64
}

type decoderLayer struct {
	audio []float32 // interleaved, shared with the parsed file
	meta  *LayerMeta
}

// Decoder renders a parsed file to binaural stereo under an interactively
// updated listener pose.
type Decoder struct {
	channels   int
	samples    int
	sampleRate int
	blockSize  int
	minDist    float64

	layers []decoderLayer
	hrtf   *HRTF
	rot    *Rotator
	pose   PoseSlot

	cursor int

	// Preallocated block-loop state.
	bus  []float32   // blockSize * channels
	hist [][]float32 // per-channel ring of past rotated samples, irLen each
	hpos int

	closed bool
}

/*------------------------------------------------------------------
 *
 * Name:	Open
 *
 * Purpose:	Prepare a parsed file for realtime decoding.
 *
 * Inputs:	file	- parsed container; layer buffers are shared, not
 *			  copied, and must stay untouched while open.
 *		hrtf	- binaural table sized for the file's order, or nil
 *			  to use the built-in stereo decode matrix.
 *		opts	- block size and distance clamp.
 *
 * Errors:	ShapeMismatch when the table order does not match the
 *		file.  All realtime preconditions are checked here; the
 *		block path is infallible afterwards.
 *
 *------------------------------------------------------------------*/

func Open(file *File, hrtf *HRTF, opts DecoderOptions) (*Decoder, error) {
	if file == nil || len(file.Layers) == 0 {
		return nil, formatErr(EmptyFile, -1, "", "nothing to decode")
	}
	var order = int(file.Header.Order)
	if hrtf == nil {
		hrtf = DefaultHRTF(order, file.Header.Normalization)
	}
	if hrtf.Order() != order {
		return nil, formatErr(ShapeMismatch, -1, "hrtf", "table order %d, file order %d", hrtf.Order(), order)
	}

	var blockSize = opts.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	var minDist = opts.MinDistance
	if minDist <= 0 {
		minDist = DefaultMinDistance
	}

	var d = &Decoder{
		channels:   int(file.Header.Channels),
		samples:    int(file.Header.Samples),
		sampleRate: int(file.Header.SampleRate),
		blockSize:  blockSize,
		minDist:    minDist,
		hrtf:       hrtf,
		rot:        NewRotator(order),
	}
	for _, l := range file.Layers {
		d.layers = append(d.layers, decoderLayer{audio: l.Audio, meta: l.Meta})
	}

	d.bus = make([]float32, blockSize*d.channels)
	d.hist = make([][]float32, d.channels)
	for k := range d.hist {
		d.hist[k] = make([]float32, hrtf.IRLength())
	}

	logger.Debug("decoder open",
		"order", order, "layers", len(d.layers),
		"samples", d.samples, "block", blockSize, "ir", hrtf.IRLength())
	return d, nil
}

// BlockSize returns the maximum frames per ProduceBlock call.
func (d *Decoder) BlockSize() int { return d.blockSize }

// SampleRate returns the file's sample rate in Hz.
func (d *Decoder) SampleRate() int { return d.sampleRate }

// Duration returns the total per-channel frame count.
func (d *Decoder) Duration() int { return d.samples }

// Pose returns the pose slot. The navigation thread stores snapshots into
// it; each block loads exactly one.
func (d *Decoder) Pose() *PoseSlot { return &d.pose }

// SetPose publishes a pose snapshot; shorthand for Pose().Store.
func (d *Decoder) SetPose(p ListenerPose) { d.pose.Store(p) }

// Seek moves the sample cursor. The FIR history is cleared so the next
// block starts from silence rather than stale context.
func (d *Decoder) Seek(frame int) error {
	if frame < 0 || frame > d.samples {
		return formatErr(ShapeMismatch, -1, "seek", "frame %d outside 0..%d", frame, d.samples)
	}
	d.cursor = frame
	for _, h := range d.hist {
		for i := range h {
			h[i] = 0
		}
	}
	d.hpos = 0
	return nil
}

// Close releases the decoder's buffers. The decoder is unusable afterwards.
func (d *Decoder) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.layers = nil
	d.bus = nil
	d.hist = nil
	d.rot = nil
	logger.Debug("decoder closed")
}

/*------------------------------------------------------------------
 *
 * Name:	ProduceBlock
 *
 * Purpose:	Render the next block of interleaved stereo.
 *
 * Inputs:	out - destination for interleaved [L R L R ...] samples.
 *		Capacity bounds the block: at most len(out)/2 frames are
 *		produced, and never more than the decoder block size.
 *
 * Returns:	Frames written.  The final block may be short; zero
 *		means end of stream.
 *
 * Description:	Runs on the audio thread.  No locks, no logging,
 *		cannot fail.  Allocates only on a rotation-cache miss.
 *
 *------------------------------------------------------------------*/

func (d *Decoder) ProduceBlock(out []float32) int {
	if d.closed {
		return 0
	}
	var frames = d.samples - d.cursor
	if frames <= 0 {
		return 0
	}
	if frames > d.blockSize {
		frames = d.blockSize
	}
	if max := len(out) / 2; frames > max {
		frames = max
	}
	if frames == 0 {
		return 0
	}

	var pose = d.pose.Load()
	var n = d.channels
	var bus = d.bus[:frames*n]
	for i := range bus {
		bus[i] = 0
	}

	// Mix layers with per-block distance gain.
	for _, layer := range d.layers {
		var rel = layer.meta.Position.Sub(pose.Position)
		var dist = rel.Norm()
		if dist < d.minDist {
			dist = d.minDist
		}
		var g = float32(layer.meta.Gain / dist)
		if g == 0 {
			continue
		}
		var src = layer.audio[d.cursor*n : (d.cursor+frames)*n]
		for i, v := range src {
			bus[i] += g * v
		}
	}

	// Undo the listener orientation: rotate the field by the inverse of
	// yaw-then-pitch.
	d.rot.Apply(bus, frames, -pose.Yaw, -pose.Pitch)

	// Binaural decode.
	var irLen = d.hrtf.IRLength()
	if irLen == 1 {
		for s := 0; s < frames; s++ {
			var frame = bus[s*n : s*n+n]
			var accL, accR float64
			for k := 0; k < n; k++ {
				var v = float64(frame[k])
				accL += float64(d.hrtf.left[k][0]) * v
				accR += float64(d.hrtf.right[k][0]) * v
			}
			out[2*s] = scrub(accL)
			out[2*s+1] = scrub(accR)
		}
	} else {
		for s := 0; s < frames; s++ {
			var frame = bus[s*n : s*n+n]
			d.hpos++
			if d.hpos == irLen {
				d.hpos = 0
			}
			var accL, accR float64
			for k := 0; k < n; k++ {
				var ring = d.hist[k]
				ring[d.hpos] = frame[k]
				var irL = d.hrtf.left[k]
				var irR = d.hrtf.right[k]
				var idx = d.hpos
				for t := 0; t < irLen; t++ {
					var v = float64(ring[idx])
					accL += float64(irL[t]) * v
					accR += float64(irR[t]) * v
					idx--
					if idx < 0 {
						idx = irLen - 1
					}
				}
			}
			out[2*s] = scrub(accL)
			out[2*s+1] = scrub(accR)
		}
	}

	d.cursor += frames
	return frames
}

// scrub converts a mix accumulator to float32, zeroing non-finite values so
// corrupt input can never reach the audio device.
func scrub(v float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return float32(v)
}
