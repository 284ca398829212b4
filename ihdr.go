package pngdecode

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// InterlaceMethod mirrors original_source/include/Common.h's
// InterlaceMethod enum.
type InterlaceMethod uint8

const (
	InterlaceNone  InterlaceMethod = 0
	InterlaceAdam7 InterlaceMethod = 1
)

// IHDR is the PNG header record: the first chunk of every valid stream.
type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   InterlaceMethod
}

// parseIHDR decodes and validates the 13-byte IHDR payload per spec §3's
// allowed (colorType, bitDepth) table and §7's BadHeaderField conditions.
func parseIHDR(payload []byte) (*IHDR, error) {
	if len(payload) != 13 {
		return nil, errors.Wrapf(ErrBadHeaderField, "ihdr: payload length %d != 13", len(payload))
	}

	h := &IHDR{
		Width:             binary.BigEndian.Uint32(payload[0:4]),
		Height:            binary.BigEndian.Uint32(payload[4:8]),
		BitDepth:          payload[8],
		ColorType:         payload[9],
		CompressionMethod: payload[10],
		FilterMethod:      payload[11],
		InterlaceMethod:   InterlaceMethod(payload[12]),
	}

	if h.Width == 0 || h.Height == 0 {
		return nil, errors.Wrap(ErrBadHeaderField, "ihdr: zero width or height")
	}
	if h.CompressionMethod != 0 {
		return nil, errors.Wrap(ErrBadHeaderField, "ihdr: unsupported compression method")
	}
	if h.FilterMethod != 0 {
		return nil, errors.Wrap(ErrBadHeaderField, "ihdr: unsupported filter method")
	}
	if h.InterlaceMethod > InterlaceAdam7 {
		return nil, errors.Wrap(ErrBadHeaderField, "ihdr: unsupported interlace method")
	}
	if !validColorTypeAndDepth(h.ColorType, h.BitDepth) {
		return nil, errors.Wrapf(ErrBadHeaderField, "ihdr: invalid colorType=%d bitDepth=%d combination", h.ColorType, h.BitDepth)
	}

	return h, nil
}

// validColorTypeAndDepth checks the allowed combinations from spec §3:
// (0, any); (2, 8|16); (3, 1|2|4|8); (4, 8|16); (6, 8|16).
func validColorTypeAndDepth(colorType, bitDepth uint8) bool {
	switch bitDepth {
	case 1, 2, 4, 8, 16:
	default:
		return false
	}
	switch colorType {
	case 0:
		return true
	case 2, 4, 6:
		return bitDepth == 8 || bitDepth == 16
	case 3:
		return bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8
	default:
		return false
	}
}

// usesPalette reports whether colorType's palette bit (bit 0) is set.
func usesPalette(colorType uint8) bool { return colorType&1 != 0 }

// rawChannels is the number of samples a raw (pre-palette-expansion) pixel
// carries: 1 for grayscale or indexed (a single palette index), 3 for
// truecolor, plus 1 more for any color type with an alpha channel (bit 2).
func rawChannels(colorType uint8) int {
	if usesPalette(colorType) {
		return 1
	}
	channels := 1
	if colorType&2 != 0 {
		channels = 3
	}
	if colorType&4 != 0 {
		channels++
	}
	return channels
}

// parsePLTE decodes a PLTE payload into an ordered RGB triplet list,
// rejecting a length not divisible by 3 and (for color type 3) an entry
// count exceeding 2^bitDepth, per spec §3's PLTE payload rule.
func parsePLTE(payload []byte, hdr *IHDR) (PLTE, error) {
	if len(payload)%3 != 0 {
		return nil, errors.Wrapf(ErrBadHeaderField, "plte: payload length %d not divisible by 3", len(payload))
	}
	entries := len(payload) / 3
	if hdr != nil && hdr.ColorType == 3 {
		maxEntries := 1 << hdr.BitDepth
		if entries > maxEntries {
			return nil, errors.Wrapf(ErrBadHeaderField, "plte: %d entries exceeds 2^bitDepth=%d", entries, maxEntries)
		}
	}
	plte := make(PLTE, entries)
	for i := 0; i < entries; i++ {
		plte[i] = RGB{R: payload[i*3], G: payload[i*3+1], B: payload[i*3+2]}
	}
	return plte, nil
}
