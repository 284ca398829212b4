package pngdecode

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var pngSignature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// chunkKind tags a recognized chunk type; everything else is chunkUnknown.
// A tagged variant plus a record-of-options (pngChunks below) generalizes
// the teacher's ChunkParse interface hierarchy away for the four chunks
// this decoder actually needs, per spec §9's chunk-polymorphism note.
type chunkKind uint8

const (
	chunkUnknown chunkKind = iota
	chunkIHDR
	chunkPLTE
	chunkIDAT
	chunkIEND
)

func classifyChunk(typ [4]byte) chunkKind {
	switch string(typ[:]) {
	case "IHDR":
		return chunkIHDR
	case "PLTE":
		return chunkPLTE
	case "IDAT":
		return chunkIDAT
	case "IEND":
		return chunkIEND
	default:
		return chunkUnknown
	}
}

// rawChunk is one length-prefixed chunk record as read off the wire,
// mirroring the teacher's chunk struct but with the length/type already
// decoded rather than kept as raw bytes.
type rawChunk struct {
	typ     [4]byte
	payload []byte
}

// pngChunks is the record-of-options spec §9 recommends in place of a
// chunk class hierarchy: at most one header, one palette, one logical
// IDAT (concatenated across chunks), and one IEND marker.
type pngChunks struct {
	ihdr    *IHDR
	palette PLTE
	idat    []byte
	sawIEND bool
}

// RGB is one PLTE palette entry.
type RGB struct {
	R, G, B uint8
}

// PLTE is an ordered list of palette entries.
type PLTE []RGB

// readSignatureAndChunks reads the 8-byte PNG signature, then repeatedly
// reads length-prefixed chunks until IEND, verifying CRCs on recognized
// chunks and validating ordering per spec §4.5/§3 invariants (i)-(iv).
func readSignatureAndChunks(r io.Reader) (*pngChunks, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, errors.Wrap(ErrIoError, "png: reading signature")
	}
	if sig != pngSignature {
		return nil, errors.Wrap(ErrBadSignature, "png: signature mismatch")
	}

	chunks := &pngChunks{}
	var previousPosition [5]int // indexed by chunkKind, 0 = unseen (1-based position)
	var sequence []chunkKind

	for {
		raw, err := readOneChunk(r)
		if err != nil {
			return nil, err
		}
		kind := classifyChunk(raw.typ)
		pos := len(sequence) // 0-based index of this chunk
		sequence = append(sequence, kind)

		if pos == 0 && kind != chunkIHDR {
			return nil, errors.Wrap(ErrBadChunkOrder, "png: IHDR must appear first")
		}

		if kind == chunkUnknown {
			// Unknown chunks are skipped without CRC verification
			// beyond the length already consumed by readOneChunk.
			continue
		}

		if previousPosition[kind] != 0 && kind != chunkIDAT {
			return nil, errors.Wrap(ErrBadChunkOrder, "png: chunk appeared more than once")
		}
		if kind == chunkIDAT && previousPosition[kind] != 0 && previousPosition[kind] != pos {
			return nil, errors.Wrap(ErrBadChunkOrder, "png: IDAT chunks must be contiguous")
		}

		switch kind {
		case chunkIHDR:
			hdr, err := parseIHDR(raw.payload)
			if err != nil {
				return nil, err
			}
			chunks.ihdr = hdr
		case chunkPLTE:
			plte, err := parsePLTE(raw.payload, chunks.ihdr)
			if err != nil {
				return nil, err
			}
			chunks.palette = plte
		case chunkIDAT:
			chunks.idat = append(chunks.idat, raw.payload...)
		case chunkIEND:
			chunks.sawIEND = true
		}

		if kind == chunkIDAT && chunks.ihdr != nil && chunks.ihdr.ColorType == 3 && previousPosition[chunkPLTE] == 0 {
			return nil, errors.Wrap(ErrBadChunkOrder, "png: PLTE must precede IDAT for color type 3")
		}

		previousPosition[kind] = pos + 1 // store 1-based so zero means unseen
		if kind == chunkIEND {
			break
		}
	}

	if chunks.ihdr == nil {
		return nil, errors.Wrap(ErrBadChunkOrder, "png: missing IHDR")
	}
	if !chunks.sawIEND {
		return nil, errors.Wrap(ErrBadChunkOrder, "png: missing IEND")
	}
	if len(chunks.idat) == 0 {
		return nil, errors.Wrap(ErrBadChunkOrder, "png: missing IDAT")
	}
	return chunks, nil
}

// readOneChunk reads one length/type/data/crc record. Recognized chunks
// have their CRC verified against the type+payload bytes; unknown chunks
// are seeked over (payload + trailing CRC) without verification, per
// spec §4.5 step 2 and original_source's ChunkType::Unknown handling.
func readOneChunk(r io.Reader) (rawChunk, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return rawChunk{}, errors.Wrap(ErrIoError, "png: reading chunk header")
	}
	length := binary.BigEndian.Uint32(header[:4])
	var typ [4]byte
	copy(typ[:], header[4:8])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return rawChunk{}, errors.Wrap(ErrIoError, "png: reading chunk payload")
	}

	var crcBytes [4]byte
	if _, err := io.ReadFull(r, crcBytes[:]); err != nil {
		return rawChunk{}, errors.Wrap(ErrIoError, "png: reading chunk crc")
	}

	if classifyChunk(typ) != chunkUnknown {
		want := binary.BigEndian.Uint32(crcBytes[:])
		got := chunkCRC(typ, payload)
		if want != got {
			return rawChunk{}, errors.Wrapf(ErrBadCrc, "png: chunk %q crc mismatch", typ[:])
		}
	}

	return rawChunk{typ: typ, payload: payload}, nil
}
