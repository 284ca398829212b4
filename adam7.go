package pngdecode

import "github.com/pkg/errors"

// adam7Pass describes one of the seven interlace passes: the starting
// row/column within the full image and the row/column stride between
// pixels this pass contributes, per the Adam7 algorithm (spec §4.6).
type adam7Pass struct {
	rowStart, colStart   int
	rowStride, colStride int
}

var adam7Passes = [7]adam7Pass{
	{rowStart: 0, colStart: 0, rowStride: 8, colStride: 8},
	{rowStart: 0, colStart: 4, rowStride: 8, colStride: 8},
	{rowStart: 4, colStart: 0, rowStride: 8, colStride: 4},
	{rowStart: 0, colStart: 2, rowStride: 4, colStride: 4},
	{rowStart: 2, colStart: 0, rowStride: 4, colStride: 2},
	{rowStart: 0, colStart: 1, rowStride: 2, colStride: 2},
	{rowStart: 1, colStart: 0, rowStride: 2, colStride: 1},
}

// dimensions returns the pixel width and height of an Adam7 pass over
// a width x height image, which is zero for passes that contribute no
// pixels to sufficiently small images (spec §4.6's "skip zero-width
// passes" edge case).
func (p adam7Pass) dimensions(width, height int) (passWidth, passHeight int) {
	if width > p.colStart {
		passWidth = (width - p.colStart + p.colStride - 1) / p.colStride
	}
	if height > p.rowStart {
		passHeight = (height - p.rowStart + p.rowStride - 1) / p.rowStride
	}
	return
}

// unfilterAdam7 walks the seven interlace passes in order over the
// decompressed IDAT stream, reverse-filtering and extracting each pass's
// scanlines directly into dst at their final de-interlaced position.
func unfilterAdam7[T Sample](dst []T, decompressed []byte, hdr *IHDR, g geometry, palette PLTE) error {
	width, height := int(hdr.Width), int(hdr.Height)
	offset := 0

	for _, pass := range adam7Passes {
		passWidth, passHeight := pass.dimensions(width, height)
		if passWidth == 0 || passHeight == 0 {
			continue
		}

		byteWidth := 1 + (passWidth*g.bitsPerPixel+7)/8
		span := byteWidth * passHeight
		if offset+span > len(decompressed) {
			return errors.Wrap(ErrInternalInvariant, "adam7: decompressed stream shorter than pass geometry requires")
		}
		passData := decompressed[offset : offset+span]

		if err := reverseFilterScanlines(passData, 0, passHeight, byteWidth, g.bpp); err != nil {
			return err
		}

		for row := 0; row < passHeight; row++ {
			rowStart := row * byteWidth
			scanline := passData[rowStart+1 : rowStart+byteWidth]
			outRow := pass.rowStart + row*pass.rowStride
			if err := extractScanlineSamples[T](dst, passWidth, width, g.outputChannels, outRow, pass.colStart, pass.colStride, scanline, hdr, g, palette); err != nil {
				return err
			}
		}

		offset += span
	}
	return nil
}
