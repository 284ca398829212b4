package pngdecode

import "github.com/pkg/errors"

// Sentinel errors for the decode error kinds named in the package's design
// notes. Callers compare against these with errors.Is; every internal
// return site wraps one of these with errors.Wrap so the stack trace
// survives back to the caller.
var (
	// ErrIoError is returned when the input cannot be opened or read.
	ErrIoError = errors.New("pngdecode: io error")

	// ErrBadSignature is returned when the input does not begin with the
	// PNG magic bytes.
	ErrBadSignature = errors.New("pngdecode: bad png signature")

	// ErrBadChunkOrder is returned for any chunk ordering violation: IHDR
	// not first, a duplicate singleton chunk, non-contiguous IDAT, PLTE
	// missing before IDAT in indexed color, or IEND not last.
	ErrBadChunkOrder = errors.New("pngdecode: bad chunk order")

	// ErrBadCrc is returned when a recognized chunk's trailing CRC-32
	// does not match the one computed over its type and payload bytes.
	ErrBadCrc = errors.New("pngdecode: bad chunk crc")

	// ErrBadHeaderField is returned for a zero width/height, unsupported
	// bit depth, invalid (colorType, bitDepth) pair, non-zero
	// compression/filter method, or interlace method > 1.
	ErrBadHeaderField = errors.New("pngdecode: bad IHDR field")

	// ErrBadZlibHeader is returned when CM != 8, CINFO > 7, the FCHECK
	// modular check fails, or FDICT is set.
	ErrBadZlibHeader = errors.New("pngdecode: bad zlib header")

	// ErrBadDeflate covers all malformed-DEFLATE-stream conditions:
	// reserved block type, mismatched LEN/NLEN, an out-of-place repeat
	// code, an undefined code-length symbol, an unpopulated Huffman
	// table slot, or a back-reference distance past the output or
	// window.
	ErrBadDeflate = errors.New("pngdecode: bad deflate stream")

	// ErrBadFilter is returned when a scanline's filter-type byte is > 4.
	ErrBadFilter = errors.New("pngdecode: bad filter type")

	// ErrInternalInvariant is returned when a post-condition check (such
	// as the final output-length assertion) fails despite an otherwise
	// well-formed stream.
	ErrInternalInvariant = errors.New("pngdecode: internal invariant violated")
)
