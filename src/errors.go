package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Error taxonomy for container parsing and validation.
 *
 * Description: A closed set of error kinds.  Reader errors carry the
 *		byte offset of the first violation so a bad file can be
 *		inspected with a hex dump; writer errors carry the
 *		offending entity (usually a layer id) instead.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one class of container or validation failure.
type ErrorKind int

const (
	InvalidMagic ErrorKind = iota + 1
	UnsupportedVersion
	InvalidOrder
	ChannelMismatch
	InvalidBitDepth
	InvalidSampleRate
	InvalidNormalization
	TruncatedData
	DuplicateLayerID
	InvalidLayerID
	MetadataTooLarge
	InvalidMetadata
	ShapeMismatch
	EmptyFile
)

var kindNames = map[ErrorKind]string{
	InvalidMagic:         "invalid magic",
	UnsupportedVersion:   "unsupported version",
	InvalidOrder:         "invalid order",
	ChannelMismatch:      "channel count mismatch",
	InvalidBitDepth:      "invalid bit depth",
	InvalidSampleRate:    "invalid sample rate",
	InvalidNormalization: "invalid normalization",
	TruncatedData:        "truncated data",
	DuplicateLayerID:     "duplicate layer id",
	InvalidLayerID:       "invalid layer id",
	MetadataTooLarge:     "metadata too large",
	InvalidMetadata:      "invalid metadata",
	ShapeMismatch:        "shape mismatch",
	EmptyFile:            "empty file",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// FormatError is the concrete error type returned by the reader and writer.
type FormatError struct {
	Kind   ErrorKind
	Offset int64  // byte offset of the violation, -1 when not applicable
	Entity string // layer id or field name, "" when not applicable
	Detail string
}

func (e *FormatError) Error() string {
	var msg = "shac: " + e.Kind.String()
	if e.Entity != "" {
		msg += fmt.Sprintf(" (%s)", e.Entity)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	return msg
}

// Is lets errors.Is match a FormatError against another FormatError with the
// same kind, so callers can use sentinel values without caring about offsets.
func (e *FormatError) Is(target error) bool {
	var t *FormatError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// ErrKind returns a sentinel for matching with errors.Is.
func ErrKind(k ErrorKind) error {
	return &FormatError{Kind: k, Offset: -1}
}

// KindOf extracts the ErrorKind from err, or 0 if err is not a FormatError.
func KindOf(err error) ErrorKind {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

func formatErr(k ErrorKind, offset int64, entity, format string, args ...any) error {
	return &FormatError{Kind: k, Offset: offset, Entity: entity, Detail: fmt.Sprintf(format, args...)}
}
