// Package shac implements the SHAC spatial audio codec: a binary container
// holding positioned mono sources as independent ambisonic layers, an
// ambisonic encoder, and a realtime binaural decoder driven by a moving
// listener.
package shac

/*------------------------------------------------------------------
 *
 * Purpose:	Shared constants, channel ordering, and the package logger.
 *
 * Description: A SHAC file stores every source as a full set of
 *		(order+1)^2 ambisonic channels in ACN order, all sharing
 *		one sample rate, sample count, and normalization scheme.
 *		The definitions here are used by every other part of the
 *		codec, so they live in one place.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Magic bytes at the start of every SHAC file: 'S','H','A','C'.
var Magic = [4]byte{0x53, 0x48, 0x41, 0x43}

const (
	// FormatVersion is the only container version this package reads or writes.
	FormatVersion = 1

	// MinOrder and MaxOrder bound the ambisonic order of a file.
	MinOrder = 1
	MaxOrder = 7

	// BitDepth is fixed; audio payloads are always 32-bit IEEE floats.
	BitDepth = 32

	// MinSampleRate and MaxSampleRate are sanity bounds on the header field.
	MinSampleRate = 8000
	MaxSampleRate = 192000

	// MaxLayerIDLen and MaxMetadataLen bound the variable-length layer fields.
	MaxLayerIDLen   = 256
	MaxMetadataLen  = 4096
	headerSize      = 26
	layerHeaderSize = 6 // id_len (u16) + meta_len (u32)
)

// Normalization selects the spherical-harmonic normalization scheme for a
// whole file. It is chosen once at encode time and resolved once at decoder
// construction; the inner loops never branch on it per sample.
type Normalization uint16

const (
	SN3D Normalization = 1 // Schmidt semi-normalized; the W channel is 1 on the sphere
	N3D  Normalization = 2 // orthonormal on the unit sphere
)

func (n Normalization) String() string {
	switch n {
	case SN3D:
		return "SN3D"
	case N3D:
		return "N3D"
	default:
		return fmt.Sprintf("Normalization(%d)", uint16(n))
	}
}

// Valid reports whether n is a scheme this package understands.
func (n Normalization) Valid() bool {
	return n == SN3D || n == N3D
}

// ChannelCount returns the number of ambisonic channels for an order:
// (order+1)^2.
func ChannelCount(order int) int {
	return (order + 1) * (order + 1)
}

/*------------------------------------------------------------------
 *
 * ACN channel ordering.
 *
 * Channel k holds degree l and index m with k = l*l + l + m.
 * This is a bijection between 0..(L+1)^2-1 and {(l,m): 0<=l<=L, -l<=m<=l}.
 *
 *------------------------------------------------------------------*/

// ACN returns the Ambisonic Channel Number for degree l and index m.
// Caller must supply 0 <= l and -l <= m <= l; anything else is a
// programming error.
func ACN(l, m int) int {
	return l*l + l + m
}

// ACNDegree is the inverse of ACN: it returns (l, m) for channel k.
func ACNDegree(k int) (l, m int) {
	l = 0
	for (l+1)*(l+1) <= k {
		l++
	}
	m = k - l*l - l
	return l, m
}

/*
 * Package logger.  Tools and tests may swap it out; the realtime block
 * loop never logs.
 */

var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "shac"})

// SetLogger replaces the package logger. Passing nil restores the default.
func SetLogger(l *charmlog.Logger) {
	if l == nil {
		logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "shac"})
		return
	}
	logger = l
}
