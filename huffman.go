package pngdecode

import "github.com/pkg/errors"

// huffmanEntry is one slot of a canonical-Huffman flat lookup table: the
// symbol it decodes to, and the number of bits its code actually occupies.
// A zero bitsUsed marks an unpopulated slot (no code of the table's
// current shape maps there).
type huffmanEntry struct {
	symbol   uint16
	bitsUsed uint8
}

// huffmanTable decodes an MSB-first canonical Huffman code of up to
// maxBits bits in a single lookup, built from a per-symbol code-length
// vector via the canonical-code algorithm (spec §4.3). Dynamic-block
// tables are constructed fresh for each DEFLATE block and never retained
// past it, the way original_source/include/Zlib.h's Huffman class is
// local to one decode call; the two fixed-code tables in inflate.go are
// built once at init and shared by every fixed block.
type huffmanTable struct {
	maxBits uint8
	entries []huffmanEntry
}

// buildHuffmanTable builds a canonical-Huffman decode table for maxBits
// (<=15 for PNG/DEFLATE) given a code length per symbol (0 = symbol
// absent). Lengths greater than maxBits, or a set of lengths that
// overflows the canonical range at some length, are both fatal per
// spec §4.3.
func buildHuffmanTable(codeLength []uint8, maxBits uint8) (*huffmanTable, error) {
	var histogram [maxHuffmanBits + 1]int
	for _, l := range codeLength {
		if l > maxBits {
			return nil, errors.Wrapf(ErrBadDeflate, "huffman: code length %d exceeds max %d", l, maxBits)
		}
		histogram[l]++
	}
	histogram[0] = 0

	var nextCode [maxHuffmanBits + 1]uint16
	for l := uint8(1); l <= maxBits; l++ {
		nextCode[l] = (nextCode[l-1] + uint16(histogram[l-1])) << 1
	}

	// Overflow check: the canonical assignment must not produce a code
	// requiring more bits than available at that length.
	for l := uint8(1); l <= maxBits; l++ {
		if uint32(nextCode[l])+uint32(histogram[l]) > (uint32(1) << l) {
			return nil, errors.Wrapf(ErrBadDeflate, "huffman: code length %d overflows canonical range", l)
		}
	}

	t := &huffmanTable{
		maxBits: maxBits,
		entries: make([]huffmanEntry, 1<<maxBits),
	}

	for sym, l := range codeLength {
		if l == 0 {
			continue
		}
		code := nextCode[l]
		nextCode[l]++

		postpendBits := maxBits - l
		base := uint32(code) << postpendBits
		for postpend := uint32(0); postpend < (uint32(1) << postpendBits); postpend++ {
			idx := base | postpend
			t.entries[idx] = huffmanEntry{symbol: uint16(sym), bitsUsed: l}
		}
	}

	return t, nil
}

const maxHuffmanBits = 15

// decode reads one symbol from r: peek maxBits bits MSB-first, look the
// slot up, fail on an unpopulated entry, discard the code's actual width,
// and return the symbol.
func (t *huffmanTable) decode(r *BitReader) (uint16, error) {
	bits, err := r.Peek(uint(t.maxBits), MSBFirst)
	if err != nil {
		return 0, err
	}
	entry := t.entries[bits]
	if entry.bitsUsed == 0 {
		return 0, errors.Wrap(ErrBadDeflate, "huffman: unpopulated table slot consulted")
	}
	r.Discard(uint(entry.bitsUsed))
	return entry.symbol, nil
}
