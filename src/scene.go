package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Scene descriptions: the offline encoding workflow.
 *
 * Description: A scene is a YAML document naming the mono source
 *		files, where each sits in space, and the file-global
 *		encoding parameters.  shacenc reads one of these and
 *		produces a container.  Parsing is strict; a typo in a
 *		field name is an error, not silence.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"
)

// SceneSource is one positioned mono source.
type SceneSource struct {
	ID       string         `yaml:"id"`
	File     string         `yaml:"file"`
	Position [3]float64     `yaml:"position"`
	Gain     *float64       `yaml:"gain"`
	Type     string         `yaml:"type"`
	Extra    map[string]any `yaml:"extra"`
}

// Scene is a full scene description.
type Scene struct {
	Order         int           `yaml:"order"`
	SampleRate    int           `yaml:"sample_rate"`
	Normalization string        `yaml:"normalization"`
	DistanceGain  bool          `yaml:"distance_gain"`
	Sources       []SceneSource `yaml:"sources"`
}

// Norm maps the scene's normalization name to the container scheme.
func (s *Scene) Norm() (Normalization, error) {
	switch strings.ToLower(s.Normalization) {
	case "", "sn3d":
		return SN3D, nil
	case "n3d":
		return N3D, nil
	default:
		return 0, fmt.Errorf("shac: unknown normalization %q (want sn3d or n3d)", s.Normalization)
	}
}

// LoadScene strict-decodes and validates a scene document.
func LoadScene(r io.Reader) (*Scene, error) {
	var dec = yaml.NewDecoder(r)
	dec.KnownFields(true)

	var scene Scene
	if err := dec.Decode(&scene); err != nil {
		return nil, fmt.Errorf("shac: bad scene file: %w", err)
	}

	if scene.Order < MinOrder || scene.Order > MaxOrder {
		return nil, fmt.Errorf("shac: scene order %d outside %d..%d", scene.Order, MinOrder, MaxOrder)
	}
	if scene.SampleRate < MinSampleRate || scene.SampleRate > MaxSampleRate {
		return nil, fmt.Errorf("shac: scene sample rate %d outside %d..%d", scene.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if _, err := scene.Norm(); err != nil {
		return nil, err
	}
	if len(scene.Sources) == 0 {
		return nil, fmt.Errorf("shac: scene has no sources")
	}
	var seen = make(map[string]bool)
	for i := range scene.Sources {
		var src = &scene.Sources[i]
		if src.ID == "" {
			return nil, fmt.Errorf("shac: source %d has no id", i)
		}
		if seen[src.ID] {
			return nil, fmt.Errorf("shac: duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
		if src.File == "" {
			return nil, fmt.Errorf("shac: source %q has no file", src.ID)
		}
		if src.Type == "" {
			src.Type = "source"
		}
	}
	return &scene, nil
}

// meta builds the layer metadata for one source.
func (src *SceneSource) meta() (*LayerMeta, error) {
	var m = NewLayerMeta(r3.Vector{X: src.Position[0], Y: src.Position[1], Z: src.Position[2]}, src.Type)
	if src.Gain != nil {
		m.Gain = *src.Gain
	}
	if len(src.Extra) > 0 {
		m.Extra = make(map[string]json.RawMessage, len(src.Extra))
		for k, v := range src.Extra {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("shac: source %q extra field %q: %w", src.ID, k, err)
			}
			m.Extra[k] = raw
		}
	}
	return m, nil
}

/*------------------------------------------------------------------
 *
 * Name:	EncodeScene
 *
 * Purpose:	Encode every scene source into a container writer.
 *
 * Inputs:	ctx	- checked between layers; encoding a large scene
 *			  can be abandoned cooperatively.
 *		scene	- validated scene.
 *		baseDir	- directory source file paths are relative to.
 *
 * Description: All layers of a file share one sample count, so every
 *		source is read first and shorter ones are padded with
 *		silence to the longest.  Sources whose WAV rate differs
 *		from the scene rate are rejected; the codec does not
 *		resample.
 *
 *------------------------------------------------------------------*/

func EncodeScene(ctx context.Context, scene *Scene, baseDir string) (*Writer, error) {
	norm, err := scene.Norm()
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(scene.Order, scene.SampleRate, norm)
	if err != nil {
		return nil, err
	}

	var signals = make([][]float32, len(scene.Sources))
	var longest int
	for i := range scene.Sources {
		var src = &scene.Sources[i]
		f, err := os.Open(filepath.Join(baseDir, src.File))
		if err != nil {
			return nil, fmt.Errorf("shac: source %q: %w", src.ID, err)
		}
		mono, rate, err := ReadWAVMono(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("shac: source %q: %w", src.ID, err)
		}
		if rate != scene.SampleRate {
			return nil, fmt.Errorf("shac: source %q is %d Hz, scene is %d Hz and the codec does not resample",
				src.ID, rate, scene.SampleRate)
		}
		if len(mono) > longest {
			longest = len(mono)
		}
		signals[i] = mono
	}

	for i := range scene.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var src = &scene.Sources[i]

		var mono = signals[i]
		if len(mono) < longest {
			var padded = make([]float32, longest)
			copy(padded, mono)
			mono = padded
		}

		meta, err := src.meta()
		if err != nil {
			return nil, err
		}
		var pos = r3.Vector{X: src.Position[0], Y: src.Position[1], Z: src.Position[2]}
		block, err := EncodeMono(mono, pos, scene.Order, norm, EncodeOptions{DistanceGain: scene.DistanceGain})
		if err != nil {
			return nil, err
		}
		if err := w.AddLayer(src.ID, block, meta); err != nil {
			return nil, err
		}
		logger.Info("encoded layer", "id", src.ID, "samples", longest,
			"x", pos.X, "y", pos.Y, "z", pos.Z)
	}
	return w, nil
}
