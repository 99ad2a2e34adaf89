package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Container reader: parse bytes into the in-memory model.
 *
 * Description: Parsing is strict and fails on the first violation,
 *		reporting the byte offset so bad files can be inspected
 *		directly.  Audio is decoded into float32 as read;
 *		non-finite samples are passed through untouched (the
 *		decoder scrubs its output instead).
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"unicode/utf8"
)

/*------------------------------------------------------------------
 *
 * Name:	Parse
 *
 * Purpose:	Decode a complete SHAC container.
 *
 * Inputs:	data - the whole file.  Trailing bytes beyond the declared
 *		layers are tolerated (the declared content must merely be
 *		contained in the input).
 *
 * Returns:	The parsed file, or a FormatError identifying the first
 *		violation and its offset.
 *
 *------------------------------------------------------------------*/

func Parse(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, formatErr(EmptyFile, 0, "", "no bytes")
	}
	if len(data) < headerSize {
		return nil, formatErr(TruncatedData, int64(len(data)), "", "need %d header bytes, have %d", headerSize, len(data))
	}

	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return nil, formatErr(InvalidMagic, 0, "", "got % X", data[0:4])
	}

	var hdr = Header{
		Version:       binary.LittleEndian.Uint16(data[4:6]),
		Order:         binary.LittleEndian.Uint16(data[6:8]),
		Channels:      binary.LittleEndian.Uint16(data[8:10]),
		SampleRate:    binary.LittleEndian.Uint32(data[10:14]),
		BitDepth:      binary.LittleEndian.Uint32(data[14:18]),
		Samples:       binary.LittleEndian.Uint32(data[18:22]),
		LayerCount:    binary.LittleEndian.Uint16(data[22:24]),
		Normalization: Normalization(binary.LittleEndian.Uint16(data[24:26])),
	}

	if hdr.Version != FormatVersion {
		return nil, formatErr(UnsupportedVersion, 4, "", "version %d", hdr.Version)
	}
	if hdr.Order < MinOrder || hdr.Order > MaxOrder {
		return nil, formatErr(InvalidOrder, 6, "", "order %d outside %d..%d", hdr.Order, MinOrder, MaxOrder)
	}
	if int(hdr.Channels) != ChannelCount(int(hdr.Order)) {
		return nil, formatErr(ChannelMismatch, 8, "", "order %d needs %d channels, header says %d",
			hdr.Order, ChannelCount(int(hdr.Order)), hdr.Channels)
	}
	if hdr.SampleRate < MinSampleRate || hdr.SampleRate > MaxSampleRate {
		return nil, formatErr(InvalidSampleRate, 10, "", "%d Hz outside %d..%d", hdr.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if hdr.BitDepth != BitDepth {
		return nil, formatErr(InvalidBitDepth, 14, "", "bit depth %d, only %d supported", hdr.BitDepth, BitDepth)
	}
	if hdr.Samples == 0 {
		return nil, formatErr(TruncatedData, 18, "", "zero samples per channel")
	}
	if hdr.LayerCount < 1 {
		return nil, formatErr(EmptyFile, 22, "", "layer count is zero")
	}
	if !hdr.Normalization.Valid() {
		return nil, formatErr(InvalidNormalization, 24, "", "scheme %d", uint16(hdr.Normalization))
	}

	var file = &File{Header: hdr}
	var seen = make(map[string]int64)
	var channels = int(hdr.Channels)
	var samples = int(hdr.Samples)
	var payloadLen = int64(samples) * int64(channels) * 4

	var off = int64(headerSize)
	for i := 0; i < int(hdr.LayerCount); i++ {
		if int64(len(data))-off < layerHeaderSize {
			return nil, formatErr(TruncatedData, off, "", "layer %d header", i)
		}
		var idLen = int(binary.LittleEndian.Uint16(data[off : off+2]))
		var metaLen = int(binary.LittleEndian.Uint32(data[off+2 : off+6]))

		if idLen < 1 || idLen > MaxLayerIDLen {
			return nil, formatErr(InvalidLayerID, off, "", "id length %d outside 1..%d", idLen, MaxLayerIDLen)
		}
		if metaLen < 1 {
			return nil, formatErr(InvalidMetadata, off+2, "", "metadata length is zero")
		}
		if metaLen > MaxMetadataLen {
			return nil, formatErr(MetadataTooLarge, off+2, "", "metadata length %d exceeds %d", metaLen, MaxMetadataLen)
		}
		off += layerHeaderSize

		if int64(len(data))-off < int64(idLen) {
			return nil, formatErr(TruncatedData, off, "", "layer %d id", i)
		}
		var id = string(data[off : off+int64(idLen)])
		if !utf8.ValidString(id) {
			return nil, formatErr(InvalidLayerID, off, "", "id is not valid UTF-8")
		}
		if prev, dup := seen[id]; dup {
			return nil, formatErr(DuplicateLayerID, off, id, "already defined at offset %d", prev)
		}
		seen[id] = off
		off += int64(idLen)

		if int64(len(data))-off < int64(metaLen) {
			return nil, formatErr(TruncatedData, off, id, "layer metadata")
		}
		meta, err := parseLayerMeta(data[off:off+int64(metaLen)], off, id)
		if err != nil {
			return nil, err
		}
		off += int64(metaLen)

		if int64(len(data))-off < payloadLen {
			return nil, formatErr(TruncatedData, off, id, "audio payload needs %d bytes, %d remain",
				payloadLen, int64(len(data))-off)
		}
		var audio = make([]float32, samples*channels)
		getFloat32s(audio, data[off:off+payloadLen])
		off += payloadLen

		file.Layers = append(file.Layers, &Layer{
			ID:       id,
			Meta:     meta,
			Audio:    audio,
			channels: channels,
			samples:  samples,
		})
	}
	return file, nil
}
