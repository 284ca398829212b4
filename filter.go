package pngdecode

import "github.com/pkg/errors"

// Filter type byte values, as per spec §4.6 and the PNG spec's five
// per-scanline filters.
const (
	filterNone    = 0
	filterSub     = 1
	filterUp      = 2
	filterAverage = 3
	filterPaeth   = 4
)

// geometry holds the quantities derived from IHDR that the unfilter stage
// needs, per spec §4.6.
type geometry struct {
	channels       int // raw stream channels: 1, 2, 3, or 4
	usesPalette    bool
	bitsPerPixel   int
	outputChannels int
	bpp            int // filter byte step, max(1, ceil(bitsPerPixel/8))
}

func computeGeometry(hdr *IHDR) geometry {
	channels := rawChannels(hdr.ColorType)
	palette := usesPalette(hdr.ColorType)
	bitsPerPixel := int(hdr.BitDepth) * channels
	outChannels := channels
	if palette {
		outChannels = 3
	}
	bpp := (bitsPerPixel + 7) / 8
	if bpp < 1 {
		bpp = 1
	}
	return geometry{
		channels:       channels,
		usesPalette:    palette,
		bitsPerPixel:   bitsPerPixel,
		outputChannels: outChannels,
		bpp:            bpp,
	}
}

// paethPredictor implements spec §4.6's Paeth predictor exactly, including
// the tie-breaking order (left, then top, then upper-left).
func paethPredictor(left, top, upperLeft uint8) uint8 {
	p := int32(left) + int32(top) - int32(upperLeft)
	pLeft := abs32(p - int32(left))
	pTop := abs32(p - int32(top))
	pUpperLeft := abs32(p - int32(upperLeft))

	if pLeft <= pTop && pLeft <= pUpperLeft {
		return left
	}
	if pTop <= pUpperLeft {
		return top
	}
	return upperLeft
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// reverseFilterScanlines undoes the per-scanline filters over `scanlines`
// consecutive byteWidth-sized rows of buf starting at offset, in place.
// byteWidth includes the leading filter-type byte. The chunk's relative
// scanline 0 is always treated as having no row above it: when this is
// the whole image (no partitioning) that is the real first scanline, and
// when it is a partition boundary introduced by the work-partitioning
// scheme below, that boundary always falls on a filter type
// of None or Sub (by construction — see partitionIndependentChunks),
// neither of which reads "above", so the simplification is safe either
// way, matching original_source/src/Filter.cpp's do_unfilter.
func reverseFilterScanlines(buf []byte, offset, scanlines, byteWidth, bpp int) error {
	for scanline := 0; scanline < scanlines; scanline++ {
		rowStart := offset + scanline*byteWidth
		filterType := buf[rowStart]

		if filterType == filterNone {
			continue
		}
		if filterType > filterPaeth {
			return errors.Wrapf(ErrBadFilter, "filter: type %d > 4", filterType)
		}

		for b := 1; b < byteWidth; b++ {
			var left, top, upperLeft uint8
			if b > bpp {
				left = buf[rowStart+b-bpp]
			}
			if scanline != 0 {
				top = buf[rowStart-byteWidth+b]
			}
			if scanline != 0 && b > bpp {
				upperLeft = buf[rowStart-byteWidth+b-bpp]
			}

			var add uint8
			switch filterType {
			case filterSub:
				if b <= bpp {
					continue
				}
				add = left
			case filterUp:
				add = top
			case filterAverage:
				add = uint8((uint16(left) + uint16(top)) / 2)
			case filterPaeth:
				add = paethPredictor(left, top, upperLeft)
			}
			buf[rowStart+b] += add
		}
	}
	return nil
}

// scaleSample linearly rescales a bitDepth-wide sample to T's full range:
// out = (in * maxOut) / (2^bitDepth - 1), per spec §4.6.
func scaleSample[T Sample](in uint32, bitDepth uint8) T {
	maxIn := uint64(1)<<bitDepth - 1
	return T(uint64(in) * sampleMax[T]() / maxIn)
}

func sampleMax[T Sample]() uint64 {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 0xFF
	case uint16:
		return 0xFFFF
	default:
		panic("pngdecode: unsupported sample type")
	}
}

// extractScanlineSamples reads one scanline's pixel samples (after
// reverse-filtering) into dst at the given output row, starting at
// outCol and striding by colStride output pixels — used directly for
// non-interlaced images (colStride=1) and per-pass for Adam7.
func extractScanlineSamples[T Sample](dst []T, width, outWidth, outChannels int, outRow, outCol, colStride int, data []byte, hdr *IHDR, g geometry, palette PLTE) error {
	r := NewBitReader(data, BigEndianBytes)
	for col := 0; col < width; col++ {
		destCol := outCol + col*colStride
		base := (outRow*outWidth + destCol) * outChannels

		if g.usesPalette {
			idx, err := r.Consume(uint(hdr.BitDepth), MSBFirst)
			if err != nil {
				return err
			}
			if int(idx) >= len(palette) {
				return errors.Wrap(ErrBadHeaderField, "filter: palette index out of range")
			}
			entry := palette[idx]
			dst[base] = scaleSample[T](uint32(entry.R), 8)
			dst[base+1] = scaleSample[T](uint32(entry.G), 8)
			dst[base+2] = scaleSample[T](uint32(entry.B), 8)
			continue
		}

		for c := 0; c < g.channels; c++ {
			v, err := r.Consume(uint(hdr.BitDepth), MSBFirst)
			if err != nil {
				return err
			}
			dst[base+c] = scaleSample[T](uint32(v), hdr.BitDepth)
		}
	}
	return nil
}

// partitionIndependentChunks splits a non-interlaced scanline stream into
// runs that can be reverse-filtered independently: a run boundary is only
// ever placed at a scanline whose filter type is None or Sub, since those
// are the only filters that don't need the row above them. This is the
// chunking policy unfilterNonInterlaced's worker-pool fan-out relies on
// (spec §5, §9).
func partitionIndependentChunks(data []byte, height, byteWidth int) [][2]int {
	var chunks [][2]int
	start := 0
	for row := 1; row < height; row++ {
		filterType := data[row*byteWidth]
		if filterType == filterNone || filterType == filterSub {
			chunks = append(chunks, [2]int{start, row - start})
			start = row
		}
	}
	chunks = append(chunks, [2]int{start, height - start})
	return chunks
}

// unfilterNonInterlaced reverse-filters and extracts every scanline of a
// non-interlaced image. When pool is non-nil and the stream partitions
// into more than one independent chunk, chunks are processed concurrently
// across the pool and joined with waitUntilIdle; otherwise processing is
// sequential.
func unfilterNonInterlaced[T Sample](dst []T, decompressed []byte, hdr *IHDR, g geometry, palette PLTE, pool *WorkerPool) error {
	width, height := int(hdr.Width), int(hdr.Height)
	byteWidth := 1 + (width*g.bitsPerPixel+7)/8
	if len(decompressed) < byteWidth*height {
		return errors.Wrap(ErrInternalInvariant, "filter: decompressed stream shorter than geometry requires")
	}

	chunks := partitionIndependentChunks(decompressed, height, byteWidth)

	process := func(c [2]int) error {
		startRow, count := c[0], c[1]
		offset := startRow * byteWidth
		if err := reverseFilterScanlines(decompressed, offset, count, byteWidth, g.bpp); err != nil {
			return err
		}
		for row := 0; row < count; row++ {
			rowStart := offset + row*byteWidth
			scanline := decompressed[rowStart+1 : rowStart+byteWidth]
			if err := extractScanlineSamples[T](dst, width, width, g.outputChannels, startRow+row, 0, 1, scanline, hdr, g, palette); err != nil {
				return err
			}
		}
		return nil
	}

	if pool == nil || len(chunks) < 2 {
		for _, c := range chunks {
			if err := process(c); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(chunks))
	for i, c := range chunks {
		i, c := i, c
		pool.submit(func() {
			errs[i] = process(c)
		})
	}
	pool.waitUntilIdle()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
