package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Just enough RIFF/WAVE support for the offline tools.
 *
 * Description: Reads mono input for the encoder (16-bit PCM or 32-bit
 *		float, any channel count, extra channels averaged down)
 *		and writes the decoder's stereo output as 32-bit float.
 *		Unknown chunks are skipped; this is a tool convenience,
 *		not a general WAV library.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

/*------------------------------------------------------------------
 *
 * Name:	ReadWAVMono
 *
 * Purpose:	Read a WAV file as a mono float32 signal.
 *
 * Returns:	Samples in -1..1 (for PCM input), the sample rate, and
 *		any format error.  Multi-channel input is downmixed by
 *		averaging the channels of each frame.
 *
 *------------------------------------------------------------------*/

func ReadWAVMono(r io.Reader) ([]float32, int, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, 0, fmt.Errorf("wav: short header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	var format, channels, bits, rate int
	var haveFmt bool

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, 0, fmt.Errorf("wav: no data chunk")
			}
			return nil, 0, err
		}
		var id = string(chunk[0:4])
		var size = binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			var body = make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, 0, fmt.Errorf("wav: short fmt chunk: %w", err)
			}
			if size < 16 {
				return nil, 0, fmt.Errorf("wav: fmt chunk is %d bytes, need 16", size)
			}
			format = int(binary.LittleEndian.Uint16(body[0:2]))
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			rate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, 0, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			if channels < 1 {
				return nil, 0, fmt.Errorf("wav: %d channels", channels)
			}
			var ok = (format == wavFormatPCM && bits == 16) ||
				(format == wavFormatFloat && bits == 32)
			if !ok {
				return nil, 0, fmt.Errorf("wav: unsupported format %d / %d bits (want 16-bit PCM or 32-bit float)", format, bits)
			}
			var body = make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, 0, fmt.Errorf("wav: short data chunk: %w", err)
			}

			var bytesPer = bits / 8
			var frameBytes = bytesPer * channels
			var frames = int(size) / frameBytes
			var mono = make([]float32, frames)
			for s := 0; s < frames; s++ {
				var sum float64
				for c := 0; c < channels; c++ {
					var off = s*frameBytes + c*bytesPer
					if format == wavFormatPCM {
						var v = int16(binary.LittleEndian.Uint16(body[off : off+2]))
						sum += float64(v) / 32768
					} else {
						sum += float64(math.Float32frombits(binary.LittleEndian.Uint32(body[off : off+4])))
					}
				}
				mono[s] = float32(sum / float64(channels))
			}
			return mono, rate, nil

		default:
			// Skip unknown chunks; they are padded to even lengths.
			var skip = int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, 0, fmt.Errorf("wav: skipping %q chunk: %w", id, err)
			}
		}
	}
}

/*------------------------------------------------------------------
 *
 * Name:	WriteWAVStereo
 *
 * Purpose:	Write interleaved stereo float32 samples as a WAV file.
 *
 *------------------------------------------------------------------*/

func WriteWAVStereo(w io.Writer, interleaved []float32, sampleRate int) error {
	if len(interleaved)%2 != 0 {
		return fmt.Errorf("wav: stereo data must have an even sample count")
	}
	var dataLen = len(interleaved) * 4

	var hdr = make([]byte, 44)
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], wavFormatFloat)
	binary.LittleEndian.PutUint16(hdr[22:24], 2)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*8)) // bytes per second
	binary.LittleEndian.PutUint16(hdr[32:34], 8)                    // frame size
	binary.LittleEndian.PutUint16(hdr[34:36], 32)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	var body = make([]byte, dataLen)
	putFloat32s(body, interleaved)
	_, err := w.Write(body)
	return err
}
