package pngdecode

import "testing"

func TestParseIHDRValid(t *testing.T) {
	hdr, err := parseIHDR(buildIHDRPayload(10, 20, 8, 2, InterlaceNone))
	if err != nil {
		t.Fatalf("parseIHDR: %v", err)
	}
	if hdr.Width != 10 || hdr.Height != 20 || hdr.BitDepth != 8 || hdr.ColorType != 2 {
		t.Fatalf("unexpected IHDR: %+v", hdr)
	}
}

func TestParseIHDRRejectsZeroDimension(t *testing.T) {
	if _, err := parseIHDR(buildIHDRPayload(0, 20, 8, 2, InterlaceNone)); err == nil {
		t.Fatal("expected an error for zero width")
	}
}

func TestValidColorTypeAndDepthTable(t *testing.T) {
	cases := []struct {
		colorType, bitDepth uint8
		want                bool
	}{
		{0, 1, true}, {0, 16, true},
		{2, 8, true}, {2, 16, true}, {2, 1, false},
		{3, 8, true}, {3, 16, false},
		{4, 8, true}, {4, 4, false},
		{6, 16, true}, {6, 2, false},
		{5, 8, false}, // no such color type
	}
	for _, c := range cases {
		got := validColorTypeAndDepth(c.colorType, c.bitDepth)
		if got != c.want {
			t.Errorf("validColorTypeAndDepth(%d, %d) = %v, want %v", c.colorType, c.bitDepth, got, c.want)
		}
	}
}

func TestParsePLTERejectsTooManyEntriesForBitDepth(t *testing.T) {
	hdr := &IHDR{ColorType: 3, BitDepth: 1} // max 2 entries
	payload := make([]byte, 9)              // 3 entries
	if _, err := parsePLTE(payload, hdr); err == nil {
		t.Fatal("expected an error for a palette exceeding 2^bitDepth entries")
	}
}

func TestParsePLTERejectsNonMultipleOf3(t *testing.T) {
	if _, err := parsePLTE(make([]byte, 4), nil); err == nil {
		t.Fatal("expected an error for a payload length not divisible by 3")
	}
}

func TestRawChannelsAndUsesPalette(t *testing.T) {
	cases := []struct {
		colorType uint8
		channels  int
		palette   bool
	}{
		{0, 1, false},
		{2, 3, false},
		{3, 1, true},
		{4, 2, false},
		{6, 4, false},
	}
	for _, c := range cases {
		if got := rawChannels(c.colorType); got != c.channels {
			t.Errorf("rawChannels(%d) = %d, want %d", c.colorType, got, c.channels)
		}
		if got := usesPalette(c.colorType); got != c.palette {
			t.Errorf("usesPalette(%d) = %v, want %v", c.colorType, got, c.palette)
		}
	}
}
