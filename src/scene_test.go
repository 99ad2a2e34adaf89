package shac

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneDoc = `
order: 1
sample_rate: 48000
normalization: sn3d
sources:
  - id: piano
    file: piano.wav
    position: [1, 0, 2]
    gain: 0.8
    type: instrument
    extra:
      color: blue
  - id: voice
    file: voice.wav
    position: [-1, 0.5, 1]
`

func TestLoadScene(t *testing.T) {
	scene, err := LoadScene(strings.NewReader(sceneDoc))
	require.NoError(t, err)
	assert.Equal(t, 1, scene.Order)
	assert.Equal(t, 48000, scene.SampleRate)
	require.Len(t, scene.Sources, 2)
	assert.Equal(t, "piano", scene.Sources[0].ID)
	require.NotNil(t, scene.Sources[0].Gain)
	assert.Equal(t, 0.8, *scene.Sources[0].Gain)
	assert.Equal(t, "instrument", scene.Sources[0].Type)
	assert.Nil(t, scene.Sources[1].Gain)
	assert.Equal(t, "source", scene.Sources[1].Type, "type defaults")

	norm, err := scene.Norm()
	require.NoError(t, err)
	assert.Equal(t, SN3D, norm)
}

func TestLoadSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "order: 1\nsample_rate: 48000\nbogus: 1\nsources:\n  - {id: a, file: a.wav}\n"},
		{"bad order", "order: 9\nsample_rate: 48000\nsources:\n  - {id: a, file: a.wav}\n"},
		{"bad rate", "order: 1\nsample_rate: 100\nsources:\n  - {id: a, file: a.wav}\n"},
		{"bad norm", "order: 1\nsample_rate: 48000\nnormalization: fancy\nsources:\n  - {id: a, file: a.wav}\n"},
		{"no sources", "order: 1\nsample_rate: 48000\n"},
		{"missing id", "order: 1\nsample_rate: 48000\nsources:\n  - {file: a.wav}\n"},
		{"duplicate id", "order: 1\nsample_rate: 48000\nsources:\n  - {id: a, file: a.wav}\n  - {id: a, file: b.wav}\n"},
		{"missing file", "order: 1\nsample_rate: 48000\nsources:\n  - {id: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScene(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

// writeMonoWAV drops a WAV with the given mono content into dir.
func writeMonoWAV(t *testing.T, dir, name string, mono []float32, rate int) {
	t.Helper()
	var stereo = make([]float32, len(mono)*2)
	for i, v := range mono {
		stereo[2*i] = v
		stereo[2*i+1] = v
	}
	var buf bytes.Buffer
	require.NoError(t, WriteWAVStereo(&buf, stereo, rate))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func TestEncodeScene(t *testing.T) {
	var dir = t.TempDir()
	writeMonoWAV(t, dir, "piano.wav", []float32{1, 0, 0, 0}, 48000)
	writeMonoWAV(t, dir, "voice.wav", []float32{0.5, 0.5}, 48000)

	scene, err := LoadScene(strings.NewReader(sceneDoc))
	require.NoError(t, err)

	w, err := EncodeScene(context.Background(), scene, dir)
	require.NoError(t, err)
	require.Equal(t, 2, w.LayerCount())

	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	file, err := Parse(buf.Bytes())
	require.NoError(t, err)
	// The shorter source was padded to the longer one.
	assert.Equal(t, uint32(4), file.Header.Samples)

	var piano = file.Layer("piano")
	require.NotNil(t, piano)
	assert.Equal(t, 0.8, piano.Meta.Gain)
	assert.Equal(t, "instrument", piano.Meta.Type)
	assert.JSONEq(t, `"blue"`, string(piano.Meta.Extra["color"]))

	var voice = file.Layer("voice")
	require.NotNil(t, voice)
	// Padded region is silent on every channel.
	var n = voice.Channels()
	for i := 2 * n; i < 4*n; i++ {
		assert.Zero(t, voice.Audio[i])
	}
}

func TestEncodeSceneRateMismatch(t *testing.T) {
	var dir = t.TempDir()
	writeMonoWAV(t, dir, "piano.wav", []float32{1}, 44100)
	writeMonoWAV(t, dir, "voice.wav", []float32{1}, 48000)

	scene, err := LoadScene(strings.NewReader(sceneDoc))
	require.NoError(t, err)

	_, err = EncodeScene(context.Background(), scene, dir)
	assert.ErrorContains(t, err, "does not resample")
}

func TestEncodeSceneCancellation(t *testing.T) {
	var dir = t.TempDir()
	writeMonoWAV(t, dir, "piano.wav", []float32{1}, 48000)
	writeMonoWAV(t, dir, "voice.wav", []float32{1}, 48000)

	scene, err := LoadScene(strings.NewReader(sceneDoc))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = EncodeScene(ctx, scene, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeSceneMissingFile(t *testing.T) {
	scene, err := LoadScene(strings.NewReader(sceneDoc))
	require.NoError(t, err)
	_, err = EncodeScene(context.Background(), scene, t.TempDir())
	assert.Error(t, err)
}
