package pngdecode

import "github.com/pkg/errors"

// parseZlibHeader reads the 2-byte zlib header (RFC 1950) from a
// big-endian BitReader and returns a BitReader re-viewed as little-endian
// byte order, positioned right after the header, ready for the DEFLATE
// body. PNG never sets FDICT, so that case is always fatal here rather
// than consuming a dictionary id — spec §4.4 treats FDICT-on-PNG as a
// hard failure, matching original_source/src/Zlib.cpp's
// `FLG & FDICTFilter && args.png` branch.
func parseZlibHeader(r *BitReader) (out *BitReader, window int, err error) {
	cmf, err := r.Consume(8, MSBFirst)
	if err != nil {
		return nil, 0, errors.Wrap(err, "zlib: reading CMF")
	}
	cm := cmf & 0x0F
	cinfo := (cmf & 0xF0) >> 4
	if cm != 8 {
		return nil, 0, errors.Wrapf(ErrBadZlibHeader, "zlib: CM %d != 8", cm)
	}
	if cinfo > 7 {
		return nil, 0, errors.Wrapf(ErrBadZlibHeader, "zlib: CINFO %d > 7", cinfo)
	}

	flg, err := r.Consume(8, MSBFirst)
	if err != nil {
		return nil, 0, errors.Wrap(err, "zlib: reading FLG")
	}
	check := cmf*256 + flg
	if check%31 != 0 {
		return nil, 0, errors.Wrap(ErrBadZlibHeader, "zlib: FCHECK failed")
	}

	const fdictBit = 0x20
	if flg&fdictBit != 0 {
		return nil, 0, errors.Wrap(ErrBadZlibHeader, "zlib: FDICT set, preset dictionaries unsupported")
	}

	window = 1 << (cinfo + 8)
	return r.WithByteOrder(LittleEndianBytes), window, nil
}
