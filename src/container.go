package shac

/*------------------------------------------------------------------
 *
 * Purpose:	In-memory model of a SHAC container.
 *
 * Description: A file is a fixed 26-byte header followed by layer
 *		blocks.  Every multi-byte integer is little-endian.
 *
 *		Header layout:
 *
 *		  offset  size  field
 *		       0     4  magic 'SHAC'
 *		       4     2  version (= 1)
 *		       6     2  ambisonic order (1..7)
 *		       8     2  channels (= (order+1)^2)
 *		      10     4  sample rate, Hz
 *		      14     4  bit depth (= 32)
 *		      18     4  samples per channel
 *		      22     2  layer count
 *		      24     2  normalization (1 = SN3D, 2 = N3D)
 *
 *		Layer block: id_len (u16), meta_len (u32), id bytes,
 *		metadata bytes, then samples*channels little-endian
 *		IEEE 754 float32, frame-major in ACN channel order.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"math"
)

// Header is the fixed-size container header.
type Header struct {
	Version       uint16
	Order         uint16
	Channels      uint16
	SampleRate    uint32
	BitDepth      uint32
	Samples       uint32
	LayerCount    uint16
	Normalization Normalization
}

// Layer is one decoded layer: a source id, its metadata, and the full
// interleaved ambisonic payload.
type Layer struct {
	ID   string
	Meta *LayerMeta

	// Audio is frame-major: Audio[s*channels + k] is sample s of ACN
	// channel k.
	Audio []float32

	channels int
	samples  int

	// channelMajor is built on first use; see ChannelMajor.
	channelMajor [][]float32
}

// Samples returns the per-channel sample count of the layer.
func (l *Layer) Samples() int { return l.samples }

// Channels returns the ambisonic channel count of the layer.
func (l *Layer) Channels() int { return l.channels }

// ChannelMajor returns the audio de-interleaved as one slice per ACN
// channel. The view is built lazily on first call and cached; it must not
// be used concurrently with the first call.
func (l *Layer) ChannelMajor() [][]float32 {
	if l.channelMajor != nil {
		return l.channelMajor
	}
	var out = make([][]float32, l.channels)
	for k := range out {
		out[k] = make([]float32, l.samples)
	}
	for s := 0; s < l.samples; s++ {
		var base = s * l.channels
		for k := 0; k < l.channels; k++ {
			out[k][s] = l.Audio[base+k]
		}
	}
	l.channelMajor = out
	return out
}

// File is a fully parsed container.
type File struct {
	Header Header
	Layers []*Layer
}

// Layer returns the layer with the given id, or nil.
func (f *File) Layer(id string) *Layer {
	for _, l := range f.Layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Size returns the encoded byte size of the file:
// 26 + sum(6 + id_len + meta_len + samples*channels*4).
func (f *File) Size() int64 {
	var total = int64(headerSize)
	for _, l := range f.Layers {
		meta, _ := l.Meta.MarshalBytes()
		total += layerHeaderSize + int64(len(l.ID)) + int64(len(meta)) +
			int64(l.samples)*int64(l.channels)*4
	}
	return total
}

func (h *Header) encode(dst []byte) {
	copy(dst[0:4], Magic[:])
	binary.LittleEndian.PutUint16(dst[4:6], h.Version)
	binary.LittleEndian.PutUint16(dst[6:8], h.Order)
	binary.LittleEndian.PutUint16(dst[8:10], h.Channels)
	binary.LittleEndian.PutUint32(dst[10:14], h.SampleRate)
	binary.LittleEndian.PutUint32(dst[14:18], h.BitDepth)
	binary.LittleEndian.PutUint32(dst[18:22], h.Samples)
	binary.LittleEndian.PutUint16(dst[22:24], h.LayerCount)
	binary.LittleEndian.PutUint16(dst[24:26], uint16(h.Normalization))
}

func putFloat32s(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(v))
	}
}

func getFloat32s(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4 : i*4+4]))
	}
}
