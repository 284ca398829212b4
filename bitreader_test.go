package pngdecode

import "testing"

func TestBitReaderBigEndianMSBFirstWholeByte(t *testing.T) {
	r := NewBitReader([]byte{0xAB}, BigEndianBytes)
	v, err := r.Consume(8, MSBFirst)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if v != 0xAB {
		t.Fatalf("Consume(8, MSBFirst) = %#x, want 0xAB", v)
	}
}

func TestBitReaderBigEndianMSBFirstSplitFields(t *testing.T) {
	// 0xAB = 10101011: read the top 4 bits then the bottom 4, MSB-first.
	r := NewBitReader([]byte{0xAB}, BigEndianBytes)
	hi, err := r.Consume(4, MSBFirst)
	if err != nil {
		t.Fatalf("Consume hi: %v", err)
	}
	if hi != 0xA {
		t.Fatalf("hi = %#x, want 0xA", hi)
	}
	lo, err := r.Consume(4, MSBFirst)
	if err != nil {
		t.Fatalf("Consume lo: %v", err)
	}
	if lo != 0xB {
		t.Fatalf("lo = %#x, want 0xB", lo)
	}
}

func TestBitReaderLittleEndianLSBFirstSequence(t *testing.T) {
	// 0x25 = 00100101: LSB-first reading yields bits 1,0,1,0,0,1,0,0.
	// Each width is read from the start of the buffer.
	buf := []byte{0x25, 0x42}
	widths := []uint{1, 3, 6, 10, 16}
	want := []uint64{0b1, 0b101, 0b100101, 0b1000100101, 0b0100001000100101}
	for i, n := range widths {
		r := NewBitReader(buf, LittleEndianBytes)
		peeked, err := r.Peek(n, LSBFirst)
		if err != nil {
			t.Fatalf("Peek(%d): %v", n, err)
		}
		if peeked != want[i] {
			t.Fatalf("Peek(%d) = %#b, want %#b", n, peeked, want[i])
		}
		consumed, err := r.Consume(n, LSBFirst)
		if err != nil {
			t.Fatalf("Consume(%d): %v", n, err)
		}
		if peeked != consumed {
			t.Fatalf("Peek(%d)=%#x != Consume(%d)=%#x", n, peeked, n, consumed)
		}
	}
}

func TestBitReaderLittleEndianMSBFirstIsBitReversed(t *testing.T) {
	r := NewBitReader([]byte{0x25}, LittleEndianBytes)
	lsb, err := r.Peek(8, LSBFirst)
	if err != nil {
		t.Fatalf("Peek LSBFirst: %v", err)
	}
	r2 := NewBitReader([]byte{0x25}, LittleEndianBytes)
	msb, err := r2.Peek(8, MSBFirst)
	if err != nil {
		t.Fatalf("Peek MSBFirst: %v", err)
	}
	if msb != reverseBits(lsb, 8) {
		t.Fatalf("MSBFirst read %#x is not the bit-reversal of LSBFirst read %#x", msb, lsb)
	}
}

func TestBitReaderWithByteOrderPreservesPosition(t *testing.T) {
	r := NewBitReader([]byte{0xFF, 0x00}, BigEndianBytes)
	r.Discard(3)
	r2 := r.WithByteOrder(LittleEndianBytes)
	if r2.ByteOffset() != r.ByteOffset() || r2.BitOffset() != r.BitOffset() {
		t.Fatalf("WithByteOrder changed position: got byte=%d bit=%d, want byte=%d bit=%d",
			r2.ByteOffset(), r2.BitOffset(), r.ByteOffset(), r.BitOffset())
	}
}

func TestBitReaderFlushByte(t *testing.T) {
	r := NewBitReader([]byte{0xFF, 0x00, 0xAB}, LittleEndianBytes)
	r.Discard(3)
	r.FlushByte()
	if r.ByteOffset() != 1 || r.BitOffset() != 0 {
		t.Fatalf("FlushByte: byte=%d bit=%d, want byte=1 bit=0", r.ByteOffset(), r.BitOffset())
	}
	v, err := r.Consume(8, LSBFirst)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if v != 0x00 {
		t.Fatalf("Consume after flush = %#x, want 0x00", v)
	}
}

func TestBitReaderShortBufferErrors(t *testing.T) {
	r := NewBitReader([]byte{0xFF}, BigEndianBytes)
	if _, err := r.Peek(16, MSBFirst); err == nil {
		t.Fatal("expected an error peeking past the end of the buffer")
	}
}
