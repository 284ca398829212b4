package pngdecode

import "testing"

func TestBuildHuffmanTableCanonicalRoundTrip(t *testing.T) {
	// lengths: symbol 0 -> 1 bit ("0"), symbol 1 -> 2 bits ("10"),
	// symbol 2 -> 2 bits ("11"). Encode the sequence 1,0,2 by hand as the
	// bitstream "10" + "0" + "11" = 0b10011000, then decode it back.
	table, err := buildHuffmanTable([]uint8{1, 2, 2}, 2)
	if err != nil {
		t.Fatalf("buildHuffmanTable: %v", err)
	}

	r := NewBitReader([]byte{0b10011000}, BigEndianBytes)
	want := []uint16{1, 0, 2}
	for i, w := range want {
		got, err := table.decode(r)
		if err != nil {
			t.Fatalf("decode[%d]: %v", i, err)
		}
		if got != w {
			t.Fatalf("decode[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestBuildHuffmanTableRejectsOverlongCode(t *testing.T) {
	if _, err := buildHuffmanTable([]uint8{5}, 2); err == nil {
		t.Fatal("expected an error for a code length exceeding maxBits")
	}
}

func TestBuildHuffmanTableRejectsOversubscribedLengths(t *testing.T) {
	// Three symbols all of length 1 cannot be assigned distinct 1-bit
	// canonical codes (only two exist).
	if _, err := buildHuffmanTable([]uint8{1, 1, 1}, 2); err == nil {
		t.Fatal("expected an error for oversubscribed code lengths")
	}
}

func TestHuffmanTableUnpopulatedSlotErrors(t *testing.T) {
	// A single symbol of length 1 leaves half the 2-bit slot space
	// unpopulated (canonical code "1" never assigned since there's no
	// second length-1 symbol needing it... in this case length 2 is
	// unused, so slots whose 2-bit prefix is "1x" stay empty).
	table, err := buildHuffmanTable([]uint8{0, 1}, 2)
	if err != nil {
		t.Fatalf("buildHuffmanTable: %v", err)
	}
	r := NewBitReader([]byte{0b10000000}, BigEndianBytes)
	if _, err := table.decode(r); err == nil {
		t.Fatal("expected an error decoding through an unpopulated slot")
	}
}
