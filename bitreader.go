package pngdecode

import "github.com/pkg/errors"

// ByteOrder selects how successive bytes combine into the 64-bit staging
// word a BitReader peeks from. BitOrder (a per-call argument, not a field)
// then selects which end of that staging word supplies the next bit.
type ByteOrder uint8

const (
	BigEndianBytes ByteOrder = iota
	LittleEndianBytes
)

// BitOrder selects, per call, which end of each byte is read first.
type BitOrder uint8

const (
	// MSBFirst: bit 0 of a byte is its most significant bit, and is read
	// first; within an n-bit field the first bit read occupies the MSB
	// of the (right-aligned) result.
	MSBFirst BitOrder = iota
	// LSBFirst: bit 0 of a byte is its least significant bit, and is
	// read first; within an n-bit field the first bit read occupies the
	// LSB of the result.
	LSBFirst
)

// BitReader is a byte-indexed, bit-granular view over an immutable byte
// buffer. Chunk/zlib framing is big-endian byte, big-endian bit; DEFLATE is
// little-endian byte, little-endian bit for meta fields but MSB-first for
// Huffman codes — a single reader re-interpreted at each boundary avoids
// copying bit state between parsers.
type BitReader struct {
	buf        []byte
	byteOffset int
	bitOffset  uint // invariant: < 8
	order      ByteOrder
}

// NewBitReader returns a BitReader over buf starting at the first bit,
// combining bytes per order.
func NewBitReader(buf []byte, order ByteOrder) *BitReader {
	return &BitReader{buf: buf, order: order}
}

// WithByteOrder returns a BitReader over the same underlying buffer and
// current position, but re-interpreted with a different byte order. This
// is the zlib→deflate handoff: a cheap value-level conversion, never a
// fresh copy of the buffer.
func (r *BitReader) WithByteOrder(order ByteOrder) *BitReader {
	return &BitReader{buf: r.buf, byteOffset: r.byteOffset, bitOffset: r.bitOffset, order: order}
}

// ByteOffset returns the current byte position (whole bytes consumed).
func (r *BitReader) ByteOffset() int { return r.byteOffset }

// BitOffset returns the current sub-byte bit position in [0, 8).
func (r *BitReader) BitOffset() uint { return r.bitOffset }

// Len reports how many bytes remain in the underlying buffer from the
// reader's current byte position (ignoring any pending sub-byte offset).
func (r *BitReader) Len() int { return len(r.buf) - r.byteOffset }

// stage loads up to 8 bytes starting at byteOffset into a 64-bit word
// combined per r.order, covering the bytes that hold the next totalBits
// bits; it fails if the buffer ends before them.
func (r *BitReader) stage(totalBits uint) (uint64, error) {
	need := int((r.bitOffset+totalBits+7)/8) + r.byteOffset
	if need > len(r.buf) {
		return 0, errors.Wrap(ErrIoError, "bit reader: short buffer")
	}
	nbytes := int((r.bitOffset+totalBits+7) / 8)
	var word uint64
	for i := 0; i < nbytes; i++ {
		b := uint64(r.buf[r.byteOffset+i])
		if r.order == LittleEndianBytes {
			word |= b << (8 * uint(i))
		} else {
			word |= b << (8 * uint(nbytes-1-i))
		}
	}
	return word, nil
}

// Peek returns the next n bits (1 <= n <= 64) without advancing the
// reader, zero-extended into the low bits of the result.
func (r *BitReader) Peek(n uint, order BitOrder) (uint64, error) {
	if n == 0 || n > 64 {
		return 0, errors.Errorf("bit reader: invalid peek width %d", n)
	}
	if r.bitOffset+n > 64 {
		head := 8 - r.bitOffset
		rest := *r
		first, err := rest.Consume(head, order)
		if err != nil {
			return 0, err
		}
		second, err := rest.Peek(n-head, order)
		if err != nil {
			return 0, err
		}
		if order == LSBFirst {
			return first | second<<head, nil
		}
		return first<<(n-head) | second, nil
	}
	word, err := r.stage(n)
	if err != nil {
		return 0, err
	}

	var nativeOrder BitOrder
	if r.order == LittleEndianBytes {
		word >>= r.bitOffset
		nativeOrder = LSBFirst
	} else {
		nbytes := int((r.bitOffset + n + 7) / 8)
		totalBits := uint64(nbytes) * 8
		word &= (uint64(1) << (totalBits - uint64(r.bitOffset))) - 1
		word >>= totalBits - uint64(n) - uint64(r.bitOffset)
		nativeOrder = MSBFirst
	}
	word &= mask64(n)

	if order == nativeOrder {
		return word, nil
	}
	return reverseBits(word, n), nil
}

// Discard advances the reader position by n bits.
func (r *BitReader) Discard(n uint) {
	total := uint64(r.bitOffset) + uint64(n)
	r.byteOffset += int(total / 8)
	r.bitOffset = uint(total % 8)
}

// Consume peeks n bits then discards them. Consume(0) reads nothing and
// returns 0, which is how zero-width DEFLATE extra-bit fields are read.
func (r *BitReader) Consume(n uint, order BitOrder) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := r.Peek(n, order)
	if err != nil {
		return 0, err
	}
	r.Discard(n)
	return v, nil
}

// FlushByte advances to the next byte boundary if the reader holds a
// pending sub-byte offset; it is a no-op when already aligned.
func (r *BitReader) FlushByte() {
	if r.bitOffset > 0 {
		r.byteOffset++
		r.bitOffset = 0
	}
}

func mask64(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// reverseBits reverses the low n bits of v (MSB-first <-> LSB-first
// reinterpretation of the same n-bit field).
func reverseBits(v uint64, n uint) uint64 {
	var out uint64
	for i := uint(0); i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}
