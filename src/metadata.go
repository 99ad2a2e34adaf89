package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Layer metadata: the JSON object stored with each layer.
 *
 * Description: Three fields are recognized: position (required, three
 *		finite numbers, meters), type (required, free-form
 *		descriptor), gain (optional, default 1).  Everything else
 *		a file carries must survive a read/write round trip, so
 *		unknown fields are kept as raw JSON and re-emitted.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// LayerMeta is the parsed form of a layer's metadata object.
type LayerMeta struct {
	Position r3.Vector
	Type     string
	Gain     float64

	// Extra holds unrecognized fields verbatim for round-tripping.
	Extra map[string]json.RawMessage

	// raw, when set, is the exact byte sequence read from a container.
	// MarshalBytes returns it unchanged so re-emitting a parsed file
	// reproduces the original metadata bytes.
	raw []byte
}

// NewLayerMeta returns metadata with the given position and type and the
// default gain.
func NewLayerMeta(pos r3.Vector, typ string) *LayerMeta {
	return &LayerMeta{Position: pos, Type: typ, Gain: 1.0}
}

/*------------------------------------------------------------------
 *
 * Name:	parseLayerMeta
 *
 * Purpose:	Validate and decode one metadata object.
 *
 * Inputs:	data	- raw JSON bytes from the container.
 *		offset	- file offset of the bytes, for error reporting.
 *		entity	- layer id, for error reporting.
 *
 * Errors:	InvalidMetadata when the bytes are not a JSON object,
 *		position is missing / wrong shape / non-finite, or type
 *		is missing or not a string.
 *
 *------------------------------------------------------------------*/

func parseLayerMeta(data []byte, offset int64, entity string) (*LayerMeta, error) {
	var fields map[string]json.RawMessage
	var dec = json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil || dec.More() {
		return nil, formatErr(InvalidMetadata, offset, entity, "not a JSON object")
	}

	var meta = &LayerMeta{Gain: 1.0, raw: append([]byte(nil), data...)}

	posRaw, ok := fields["position"]
	if !ok {
		return nil, formatErr(InvalidMetadata, offset, entity, "missing position")
	}
	var pos []float64
	if err := json.Unmarshal(posRaw, &pos); err != nil || len(pos) != 3 {
		return nil, formatErr(InvalidMetadata, offset, entity, "position must be an array of 3 numbers")
	}
	for _, v := range pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, formatErr(InvalidMetadata, offset, entity, "position must be finite")
		}
	}
	meta.Position = r3.Vector{X: pos[0], Y: pos[1], Z: pos[2]}

	typRaw, ok := fields["type"]
	if !ok {
		return nil, formatErr(InvalidMetadata, offset, entity, "missing type")
	}
	if err := json.Unmarshal(typRaw, &meta.Type); err != nil {
		return nil, formatErr(InvalidMetadata, offset, entity, "type must be a string")
	}

	if gainRaw, ok := fields["gain"]; ok {
		if err := json.Unmarshal(gainRaw, &meta.Gain); err != nil {
			return nil, formatErr(InvalidMetadata, offset, entity, "gain must be a number")
		}
	}

	delete(fields, "position")
	delete(fields, "type")
	delete(fields, "gain")
	if len(fields) > 0 {
		meta.Extra = fields
	}
	return meta, nil
}

// MarshalBytes serializes the metadata. Metadata that came from a parsed
// container is reproduced byte for byte; freshly built metadata is emitted
// with position, type, gain first and extra fields in sorted order.
func (m *LayerMeta) MarshalBytes() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	pos, err := json.Marshal([3]float64{m.Position.X, m.Position.Y, m.Position.Z})
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"position":`)
	buf.Write(pos)

	typ, err := json.Marshal(m.Type)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"type":`)
	buf.Write(typ)

	gain, err := json.Marshal(m.Gain)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"gain":`)
	buf.Write(gain)

	var keys = make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(m.Extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
