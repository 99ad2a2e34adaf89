package shac

import (
	"encoding/json"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayerMeta(t *testing.T) {
	meta, err := parseLayerMeta([]byte(`{"position":[1,2.5,-3],"type":"piano","gain":0.25,"note":"hi"}`), 0, "x")
	require.NoError(t, err)
	assert.Equal(t, r3.Vector{X: 1, Y: 2.5, Z: -3}, meta.Position)
	assert.Equal(t, "piano", meta.Type)
	assert.Equal(t, 0.25, meta.Gain)
	assert.JSONEq(t, `"hi"`, string(meta.Extra["note"]))
}

func TestParseLayerMetaGainDefault(t *testing.T) {
	meta, err := parseLayerMeta([]byte(`{"position":[0,0,1],"type":"t"}`), 0, "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, meta.Gain)
}

func TestParseLayerMetaErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"not an object", `[1,2,3]`},
		{"null", `null`},
		{"trailing garbage", `{"position":[0,0,1],"type":"t"} extra`},
		{"missing position", `{"type":"t"}`},
		{"short position", `{"position":[0,0],"type":"t"}`},
		{"long position", `{"position":[0,0,1,2],"type":"t"}`},
		{"string position", `{"position":["a","b","c"],"type":"t"}`},
		{"missing type", `{"position":[0,0,1]}`},
		{"numeric type", `{"position":[0,0,1],"type":7}`},
		{"string gain", `{"position":[0,0,1],"type":"t","gain":"loud"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLayerMeta([]byte(tt.data), 99, "lyr")
			require.Error(t, err)
			assert.Equal(t, InvalidMetadata, KindOf(err))

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, int64(99), fe.Offset)
			assert.Equal(t, "lyr", fe.Entity)
		})
	}
}

func TestMetaRawRoundTrip(t *testing.T) {
	// A parsed object is re-emitted byte for byte, whatever its field
	// order or spacing was.
	var original = []byte(`{ "zz": 1, "type": "t", "position": [0, 0, 1] }`)
	meta, err := parseLayerMeta(original, 0, "x")
	require.NoError(t, err)

	out, err := meta.MarshalBytes()
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestMetaFreshMarshal(t *testing.T) {
	var meta = NewLayerMeta(r3.Vector{X: 0.5, Z: 1}, "drum")
	meta.Extra = map[string]json.RawMessage{
		"b": json.RawMessage(`2`),
		"a": json.RawMessage(`1`),
	}
	out, err := meta.MarshalBytes()
	require.NoError(t, err)
	// Known fields first, extras in sorted order, deterministically.
	assert.Equal(t, `{"position":[0.5,0,1],"type":"drum","gain":1,"a":1,"b":2}`, string(out))

	// And it parses back to the same values.
	back, err := parseLayerMeta(out, 0, "x")
	require.NoError(t, err)
	assert.Equal(t, meta.Position, back.Position)
	assert.Equal(t, meta.Type, back.Type)
	assert.Equal(t, meta.Gain, back.Gain)
}
