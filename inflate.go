package pngdecode

import "github.com/pkg/errors"

// lengthBase/lengthExtraBits and distanceBase/distanceExtraBits are the
// RFC 1951 length (symbols 257..285) and distance (symbols 0..29) tables,
// transcribed from spec §4.4 (and matching
// original_source/include/Zlib.h's lengthExtraTable/distanceExtraTable).
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}
var lengthExtraBits = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

var distanceBase = [30]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}
var distanceExtraBits = [30]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// clenSwizzle is the permutation RFC 1951 applies to the HCLEN code-length
// code lengths before they can be used to build the code-length table.
var clenSwizzle = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// fixedLiteralTable and fixedDistanceTable are built once and reused for
// every BTYPE=01 block; RFC 1951's fixed code assigns lengths 8 for
// symbols 0-143, 9 for 144-255, 7 for 256-279, 8 for 280-287, and a fixed
// 5-bit-wide code for all 30 distance symbols.
var (
	fixedLiteralTable  *huffmanTable
	fixedDistanceTable *huffmanTable
)

func init() {
	lengths := make([]uint8, 288)
	for i := 0; i <= 143; i++ {
		lengths[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lengths[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lengths[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lengths[i] = 8
	}
	t, err := buildHuffmanTable(lengths, 9)
	if err != nil {
		panic(err)
	}
	fixedLiteralTable = t

	distLengths := make([]uint8, 30)
	for i := range distLengths {
		distLengths[i] = 5
	}
	dt, err := buildHuffmanTable(distLengths, 5)
	if err != nil {
		panic(err)
	}
	fixedDistanceTable = dt
}

// inflate decompresses a zlib-wrapped DEFLATE stream (RFC 1950 + RFC 1951)
// held in input, the concatenated IDAT payload. input is read through a
// big-endian-byte BitReader positioned at the start of the zlib header
// (C4 entry, spec §4.4).
func inflate(input []byte) ([]byte, error) {
	zlibReader := NewBitReader(input, BigEndianBytes)
	r, window, err := parseZlibHeader(zlibReader)
	if err != nil {
		return nil, err
	}

	var output []byte
	for {
		final, err := r.Consume(1, LSBFirst)
		if err != nil {
			return nil, errors.Wrap(err, "inflate: reading BFINAL")
		}
		btype, err := r.Consume(2, LSBFirst)
		if err != nil {
			return nil, errors.Wrap(err, "inflate: reading BTYPE")
		}

		switch btype {
		case 0: // stored
			output, err = inflateStoredBlock(r, output)
		case 1: // fixed Huffman
			output, err = inflateHuffmanBlock(r, output, fixedLiteralTable, fixedDistanceTable, window)
		case 2: // dynamic Huffman
			var lit, dist *huffmanTable
			lit, dist, err = readDynamicTables(r)
			if err != nil {
				return nil, err
			}
			output, err = inflateHuffmanBlock(r, output, lit, dist, window)
		default: // 3: reserved
			return nil, errors.Wrap(ErrBadDeflate, "inflate: reserved block type 3")
		}
		if err != nil {
			return nil, err
		}

		if final != 0 {
			break
		}
	}
	return output, nil
}

func inflateStoredBlock(r *BitReader, output []byte) ([]byte, error) {
	r.FlushByte()
	len16, err := r.Consume(16, LSBFirst)
	if err != nil {
		return nil, errors.Wrap(err, "inflate: reading LEN")
	}
	nlen16, err := r.Consume(16, LSBFirst)
	if err != nil {
		return nil, errors.Wrap(err, "inflate: reading NLEN")
	}
	if uint16(len16)^0xFFFF != uint16(nlen16) {
		return nil, errors.Wrap(ErrBadDeflate, "inflate: LEN/NLEN mismatch")
	}
	for i := uint16(0); i < uint16(len16); i++ {
		b, err := r.Consume(8, LSBFirst)
		if err != nil {
			return nil, errors.Wrap(err, "inflate: reading stored byte")
		}
		output = append(output, byte(b))
	}
	return output, nil
}

// readDynamicTables reads HLIT/HDIST/HCLEN, builds the code-length table,
// decodes the literal/length and distance code-length vectors through it
// (handling the 16/17/18 repeat symbols), and builds the two real tables.
func readDynamicTables(r *BitReader) (lit, dist *huffmanTable, err error) {
	hlit, err := r.Consume(5, LSBFirst)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := r.Consume(5, LSBFirst)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := r.Consume(4, LSBFirst)
	if err != nil {
		return nil, nil, err
	}
	numLit := int(hlit) + 257
	numDist := int(hdist) + 1
	numClen := int(hclen) + 4

	var clenLengths [19]uint8
	for i := 0; i < numClen; i++ {
		v, err := r.Consume(3, LSBFirst)
		if err != nil {
			return nil, nil, err
		}
		clenLengths[clenSwizzle[i]] = uint8(v)
	}

	clenTable, err := buildHuffmanTable(clenLengths[:], 7)
	if err != nil {
		return nil, nil, err
	}

	total := numLit + numDist
	lengths := make([]uint8, total)
	var lastLen uint8
	for i := 0; i < total; {
		sym, err := clenTable.decode(r)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym <= 15:
			lengths[i] = uint8(sym)
			lastLen = uint8(sym)
			i++
		case sym == 16:
			if i == 0 {
				return nil, nil, errors.Wrap(ErrBadDeflate, "inflate: repeat code 16 in first position")
			}
			count, err := r.Consume(2, LSBFirst)
			if err != nil {
				return nil, nil, err
			}
			for n := int(count) + 3; n > 0 && i < total; n-- {
				lengths[i] = lastLen
				i++
			}
		case sym == 17:
			count, err := r.Consume(3, LSBFirst)
			if err != nil {
				return nil, nil, err
			}
			for n := int(count) + 3; n > 0 && i < total; n-- {
				lengths[i] = 0
				i++
			}
			lastLen = 0
		case sym == 18:
			count, err := r.Consume(7, LSBFirst)
			if err != nil {
				return nil, nil, err
			}
			for n := int(count) + 11; n > 0 && i < total; n-- {
				lengths[i] = 0
				i++
			}
			lastLen = 0
		default:
			return nil, nil, errors.Wrap(ErrBadDeflate, "inflate: undefined code-length symbol")
		}
	}

	lit, err = buildHuffmanTable(lengths[:numLit], maxHuffmanBits)
	if err != nil {
		return nil, nil, err
	}
	dist, err = buildHuffmanTable(lengths[numLit:], maxHuffmanBits)
	if err != nil {
		return nil, nil, err
	}
	return lit, dist, nil
}

// inflateHuffmanBlock runs the symbol loop shared by fixed and dynamic
// Huffman blocks: literals append directly, 256 ends the block, and
// 257-285 drive an LZ77 back-reference copy with self-overlap allowed.
func inflateHuffmanBlock(r *BitReader, output []byte, lit, dist *huffmanTable, window int) ([]byte, error) {
	for {
		sym, err := lit.decode(r)
		if err != nil {
			return nil, err
		}
		switch {
		case sym < 256:
			output = append(output, byte(sym))
		case sym == 256:
			return output, nil
		default:
			if sym > 285 {
				return nil, errors.Wrap(ErrBadDeflate, "inflate: literal/length symbol out of range")
			}
			lenIdx := sym - 257
			extra, err := r.Consume(uint(lengthExtraBits[lenIdx]), LSBFirst)
			if err != nil {
				return nil, err
			}
			length := int(lengthBase[lenIdx]) + int(extra)

			distSym, err := dist.decode(r)
			if err != nil {
				return nil, err
			}
			if int(distSym) >= len(distanceBase) {
				return nil, errors.Wrap(ErrBadDeflate, "inflate: distance symbol out of range")
			}
			distExtra, err := r.Consume(uint(distanceExtraBits[distSym]), LSBFirst)
			if err != nil {
				return nil, err
			}
			distance := int(distanceBase[distSym]) + int(distExtra)

			if distance > len(output) {
				return nil, errors.Wrap(ErrBadDeflate, "inflate: distance exceeds output length")
			}
			if distance > window {
				return nil, errors.Wrap(ErrBadDeflate, "inflate: distance exceeds window")
			}

			start := len(output) - distance
			for i := 0; i < length; i++ {
				output = append(output, output[start+i])
			}
		}
	}
}
