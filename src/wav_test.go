package shac

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVStereoRoundTrip(t *testing.T) {
	var stereo = []float32{0.5, 0.5, -0.25, -0.25, 1, 1, 0, 0}
	var buf bytes.Buffer
	require.NoError(t, WriteWAVStereo(&buf, stereo, 48000))

	// The reader downmixes; identical channels come back unchanged.
	mono, rate, err := ReadWAVMono(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 48000, rate)
	require.Len(t, mono, 4)
	assert.InDelta(t, 0.5, float64(mono[0]), 1e-7)
	assert.InDelta(t, -0.25, float64(mono[1]), 1e-7)
	assert.InDelta(t, 1.0, float64(mono[2]), 1e-7)
}

// buildPCM16 writes a minimal mono 16-bit WAV by hand.
func buildPCM16(t *testing.T, samples []int16, rate int, extraChunk bool) []byte {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		require.NoError(t, binary.Write(&data, binary.LittleEndian, s))
	}

	var body bytes.Buffer
	body.WriteString("WAVE")
	if extraChunk {
		// An unknown odd-length chunk before fmt, with its pad byte.
		body.WriteString("LIST")
		binary.Write(&body, binary.LittleEndian, uint32(3))
		body.Write([]byte{1, 2, 3, 0})
	}
	body.WriteString("fmt ")
	binary.Write(&body, binary.LittleEndian, uint32(16))
	binary.Write(&body, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(&body, binary.LittleEndian, uint16(1)) // channels
	binary.Write(&body, binary.LittleEndian, uint32(rate))
	binary.Write(&body, binary.LittleEndian, uint32(rate*2))
	binary.Write(&body, binary.LittleEndian, uint16(2))
	binary.Write(&body, binary.LittleEndian, uint16(16))
	body.WriteString("data")
	binary.Write(&body, binary.LittleEndian, uint32(data.Len()))
	body.Write(data.Bytes())

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestReadWAVPCM16(t *testing.T) {
	var wav = buildPCM16(t, []int16{0, 16384, -32768, 32767}, 44100, false)
	mono, rate, err := ReadWAVMono(bytes.NewReader(wav))
	require.NoError(t, err)
	assert.Equal(t, 44100, rate)
	require.Len(t, mono, 4)
	assert.InDelta(t, 0.0, float64(mono[0]), 1e-6)
	assert.InDelta(t, 0.5, float64(mono[1]), 1e-6)
	assert.InDelta(t, -1.0, float64(mono[2]), 1e-6)
	assert.InDelta(t, 32767.0/32768, float64(mono[3]), 1e-6)
}

func TestReadWAVSkipsUnknownChunks(t *testing.T) {
	var wav = buildPCM16(t, []int16{100}, 8000, true)
	mono, rate, err := ReadWAVMono(bytes.NewReader(wav))
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	require.Len(t, mono, 1)
}

func TestReadWAVErrors(t *testing.T) {
	var _, _, err = ReadWAVMono(bytes.NewReader([]byte("nope")))
	assert.Error(t, err)

	_, _, err = ReadWAVMono(bytes.NewReader([]byte("RIFF\x00\x00\x00\x00JUNK")))
	assert.Error(t, err)

	// Valid RIFF/WAVE but no data chunk.
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	buf.WriteString("WAVE")
	_, _, err = ReadWAVMono(bytes.NewReader(buf.Bytes()))
	assert.ErrorContains(t, err, "no data chunk")
}

func TestWriteWAVStereoOddLength(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteWAVStereo(&buf, []float32{1, 2, 3}, 48000))
}
