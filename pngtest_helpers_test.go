package pngdecode

import "encoding/binary"

// buildStoredDeflate wraps raw bytes in a minimal zlib stream consisting
// of one final stored (uncompressed) DEFLATE block. CMF=0x78 selects
// CM=8/CINFO=7 (32K window); FLG=0x01 is the smallest byte satisfying
// the FCHECK modular constraint with FDICT clear.
func buildStoredDeflate(raw []byte) []byte {
	out := []byte{0x78, 0x01, 0x01}
	lenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBytes, uint16(len(raw)))
	out = append(out, lenBytes...)
	nlenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(nlenBytes, ^uint16(len(raw)))
	out = append(out, nlenBytes...)
	out = append(out, raw...)
	return out
}

func buildChunk(typ string, payload []byte) []byte {
	var out []byte
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, uint32(len(payload)))
	out = append(out, lenBytes...)
	var t [4]byte
	copy(t[:], typ)
	out = append(out, t[:]...)
	out = append(out, payload...)
	crc := chunkCRC(t, payload)
	crcBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBytes, crc)
	out = append(out, crcBytes...)
	return out
}

func buildIHDRPayload(width, height uint32, bitDepth, colorType uint8, interlace InterlaceMethod) []byte {
	p := make([]byte, 13)
	binary.BigEndian.PutUint32(p[0:4], width)
	binary.BigEndian.PutUint32(p[4:8], height)
	p[8] = bitDepth
	p[9] = colorType
	p[10] = 0
	p[11] = 0
	p[12] = byte(interlace)
	return p
}

// buildPNG assembles a full PNG byte stream: signature, IHDR, an optional
// PLTE, one IDAT carrying idatPayload, and IEND.
func buildPNG(ihdrPayload []byte, platePayload []byte, idatPayload []byte) []byte {
	var out []byte
	out = append(out, pngSignature[:]...)
	out = append(out, buildChunk("IHDR", ihdrPayload)...)
	if platePayload != nil {
		out = append(out, buildChunk("PLTE", platePayload)...)
	}
	out = append(out, buildChunk("IDAT", idatPayload)...)
	out = append(out, buildChunk("IEND", nil)...)
	return out
}

// testBitWriter packs bits LSB-first into a byte buffer, mirroring the
// stream convention a LittleEndianBytes BitReader consumes with
// Consume(n, LSBFirst). It exists only to build hand-crafted DEFLATE
// blocks in tests.
type testBitWriter struct {
	buf      []byte
	bitCount uint
}

func (w *testBitWriter) writeBits(value uint64, n uint) {
	for i := uint(0); i < n; i++ {
		bit := (value >> i) & 1
		byteIdx := w.bitCount / 8
		for int(byteIdx) >= len(w.buf) {
			w.buf = append(w.buf, 0)
		}
		w.buf[byteIdx] |= byte(bit) << (w.bitCount % 8)
		w.bitCount++
	}
}

// writeHuffmanCode writes an n-bit canonical Huffman code value (the code
// as conventionally written MSB-first) into the LSB-first stream, by
// reversing it first — the same transform real DEFLATE encoders apply.
func (w *testBitWriter) writeHuffmanCode(code uint64, n uint) {
	w.writeBits(reverseBits(code, n), n)
}

func (w *testBitWriter) bytes() []byte {
	return w.buf
}
