package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Container writer: accumulate layers, then emit the file.
 *
 * Description: A Writer is a single-session builder.  The first layer
 *		pins the file's per-channel sample count; later layers
 *		must match it.  Validation happens in AddLayer so a bad
 *		layer fails before any bytes are written.
 *
 *		Non-finite samples are passed through unchanged; the
 *		format stores raw IEEE floats and scrubbing is the
 *		decoder's job.
 *
 *------------------------------------------------------------------*/

import (
	"io"
	"math"
	"unicode/utf8"
)

// Writer builds a SHAC container in memory and emits it with WriteTo.
type Writer struct {
	order      int
	channels   int
	sampleRate int
	norm       Normalization

	samples int // per-channel sample count, -1 until the first layer pins it
	layers  []*Layer
	seen    map[string]bool
}

// NewWriter starts a writer session. Order must be 1..7 and the sample rate
// within the container's sanity bounds.
func NewWriter(order, sampleRate int, norm Normalization) (*Writer, error) {
	if order < MinOrder || order > MaxOrder {
		return nil, formatErr(InvalidOrder, -1, "", "order %d outside %d..%d", order, MinOrder, MaxOrder)
	}
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return nil, formatErr(InvalidSampleRate, -1, "", "%d Hz outside %d..%d", sampleRate, MinSampleRate, MaxSampleRate)
	}
	if !norm.Valid() {
		return nil, formatErr(InvalidNormalization, -1, "", "scheme %d", uint16(norm))
	}
	return &Writer{
		order:      order,
		channels:   ChannelCount(order),
		sampleRate: sampleRate,
		norm:       norm,
		samples:    -1,
		seen:       make(map[string]bool),
	}, nil
}

// LayerCount returns the number of layers added so far.
func (w *Writer) LayerCount() int { return len(w.layers) }

/*------------------------------------------------------------------
 *
 * Name:	AddLayer
 *
 * Purpose:	Validate and queue one layer.
 *
 * Inputs:	id	- unique layer identifier, 1..256 bytes of UTF-8.
 *		block	- interleaved ambisonic samples; length must be a
 *			  multiple of the channel count.
 *		meta	- layer metadata; serialized form must fit the
 *			  container's 4096-byte field.
 *
 * Errors:	InvalidLayerID, DuplicateLayerID, ShapeMismatch,
 *		InvalidMetadata, MetadataTooLarge.
 *
 *------------------------------------------------------------------*/

func (w *Writer) AddLayer(id string, block []float32, meta *LayerMeta) error {
	if len(id) == 0 || len(id) > MaxLayerIDLen || !utf8.ValidString(id) {
		return formatErr(InvalidLayerID, -1, id, "id must be 1..%d bytes of valid UTF-8", MaxLayerIDLen)
	}
	if w.seen[id] {
		return formatErr(DuplicateLayerID, -1, id, "layer id already added")
	}
	if meta == nil {
		return formatErr(InvalidMetadata, -1, id, "metadata is required")
	}
	metaBytes, err := meta.MarshalBytes()
	if err != nil {
		return formatErr(InvalidMetadata, -1, id, "metadata not serializable: %v", err)
	}
	if len(metaBytes) == 0 {
		return formatErr(InvalidMetadata, -1, id, "metadata is empty")
	}
	if len(metaBytes) > MaxMetadataLen {
		return formatErr(MetadataTooLarge, -1, id, "%d bytes exceeds %d", len(metaBytes), MaxMetadataLen)
	}

	if len(block) == 0 || len(block)%w.channels != 0 {
		return formatErr(ShapeMismatch, -1, id, "block length %d is not a multiple of %d channels", len(block), w.channels)
	}
	var frames = len(block) / w.channels
	if w.samples < 0 {
		if uint64(frames) > math.MaxUint32 {
			return formatErr(ShapeMismatch, -1, id, "sample count %d overflows the header field", frames)
		}
		w.samples = frames
	} else if frames != w.samples {
		return formatErr(ShapeMismatch, -1, id, "layer has %d samples, file has %d", frames, w.samples)
	}

	w.seen[id] = true
	w.layers = append(w.layers, &Layer{
		ID:       id,
		Meta:     meta,
		Audio:    block,
		channels: w.channels,
		samples:  frames,
	})
	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	WriteTo
 *
 * Purpose:	Emit the complete container.
 *
 * Description:	At least one layer is required; the format has no empty
 *		files.  After a successful WriteTo the writer can keep
 *		accepting layers and be written again, but files already
 *		emitted are never modified.
 *
 *------------------------------------------------------------------*/

func (w *Writer) WriteTo(sink io.Writer) (int64, error) {
	if len(w.layers) == 0 {
		return 0, formatErr(EmptyFile, -1, "", "a container needs at least one layer")
	}
	if len(w.layers) > math.MaxUint16 {
		return 0, formatErr(ShapeMismatch, -1, "", "%d layers overflows the header field", len(w.layers))
	}

	var hdr = Header{
		Version:       FormatVersion,
		Order:         uint16(w.order),
		Channels:      uint16(w.channels),
		SampleRate:    uint32(w.sampleRate),
		BitDepth:      BitDepth,
		Samples:       uint32(w.samples),
		LayerCount:    uint16(len(w.layers)),
		Normalization: w.norm,
	}

	var buf [headerSize]byte
	hdr.encode(buf[:])
	var written int64
	n, err := sink.Write(buf[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, layer := range w.layers {
		metaBytes, err := layer.Meta.MarshalBytes()
		if err != nil {
			return written, formatErr(InvalidMetadata, -1, layer.ID, "metadata not serializable: %v", err)
		}

		var lh [layerHeaderSize]byte
		lh[0] = byte(len(layer.ID))
		lh[1] = byte(len(layer.ID) >> 8)
		lh[2] = byte(len(metaBytes))
		lh[3] = byte(len(metaBytes) >> 8)
		lh[4] = byte(len(metaBytes) >> 16)
		lh[5] = byte(len(metaBytes) >> 24)

		for _, chunk := range [][]byte{lh[:], []byte(layer.ID), metaBytes} {
			n, err := sink.Write(chunk)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}

		var audio = make([]byte, len(layer.Audio)*4)
		putFloat32s(audio, layer.Audio)
		n, err = sink.Write(audio)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
