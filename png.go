// Package pngdecode decodes baseline PNG images (RFC 2083 / ISO 15948)
// without depending on image/png or compress/zlib: chunk parsing, zlib
// framing, DEFLATE, and scanline unfiltering are all implemented here.
package pngdecode

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// parallelThreshold is the scanline count at or above which a non-interlaced
// decode fans its unfiltering work out across a worker pool rather than
// running it on the calling goroutine; below it the pool's scheduling
// overhead isn't worth paying.
const parallelThreshold = 64

// decode runs the full pipeline: chunk stream -> DEFLATE decompression ->
// scanline unfiltering -> sample extraction, per the component ordering
// bytes -> C5 -> C4 -> C6 -> Image. When pool is non-nil it is used (and
// left running) for non-interlaced unfiltering instead of a fresh
// create-and-drop pool, letting a caller decoding many images amortize
// goroutine startup across calls.
func decode[T Sample](r io.Reader, pool *WorkerPool) (Image[T], error) {
	chunks, err := readSignatureAndChunks(r)
	if err != nil {
		return Image[T]{}, err
	}
	hdr := chunks.ihdr

	decompressed, err := inflate(chunks.idat)
	if err != nil {
		return Image[T]{}, err
	}

	g := computeGeometry(hdr)
	width, height := int(hdr.Width), int(hdr.Height)
	data := make([]T, width*height*g.outputChannels)

	if hdr.InterlaceMethod == InterlaceAdam7 {
		if err := unfilterAdam7[T](data, decompressed, hdr, g, chunks.palette); err != nil {
			return Image[T]{}, err
		}
	} else {
		activePool := pool
		if activePool == nil && height >= parallelThreshold {
			activePool = NewWorkerPool(runtimeWorkerCount())
			defer activePool.Shutdown()
		}
		if err := unfilterNonInterlaced[T](data, decompressed, hdr, g, chunks.palette, activePool); err != nil {
			return Image[T]{}, err
		}
	}

	if len(data) != width*height*g.outputChannels {
		return Image[T]{}, errors.Wrap(ErrInternalInvariant, "png: output length mismatch")
	}

	return Image[T]{
		Data:     data,
		Width:    width,
		Height:   height,
		Channels: g.outputChannels,
	}, nil
}

// Decode8 decodes r into an 8-bit-per-sample Image, scaling samples down
// from their native bit depth when necessary. A worker pool, if used, is
// created and shut down within this call.
func Decode8(r io.Reader) (Image[uint8], error) {
	return decode[uint8](r, nil)
}

// Decode16 decodes r into a 16-bit-per-sample Image, scaling samples up
// from their native bit depth when necessary. A worker pool, if used, is
// created and shut down within this call.
func Decode16(r io.Reader) (Image[uint16], error) {
	return decode[uint16](r, nil)
}

// Decode8WithPool is Decode8 but fans non-interlaced unfiltering out across
// pool instead of creating one for the call. pool is left running;
// callers reusing it across many decodes must Shutdown it themselves.
func Decode8WithPool(r io.Reader, pool *WorkerPool) (Image[uint8], error) {
	return decode[uint8](r, pool)
}

// Decode16WithPool is Decode16 but fans non-interlaced unfiltering out
// across pool instead of creating one for the call. pool is left running;
// callers reusing it across many decodes must Shutdown it themselves.
func Decode16WithPool(r io.Reader, pool *WorkerPool) (Image[uint16], error) {
	return decode[uint16](r, pool)
}

// DecodeFile8 opens path and decodes it with Decode8.
func DecodeFile8(path string) (Image[uint8], error) {
	f, err := os.Open(path)
	if err != nil {
		return Image[uint8]{}, errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()
	return Decode8(f)
}

// DecodeFile16 opens path and decodes it with Decode16.
func DecodeFile16(path string) (Image[uint16], error) {
	f, err := os.Open(path)
	if err != nil {
		return Image[uint16]{}, errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()
	return Decode16(f)
}

// DecodeFile8WithPool opens path and decodes it with Decode8WithPool.
func DecodeFile8WithPool(path string, pool *WorkerPool) (Image[uint8], error) {
	f, err := os.Open(path)
	if err != nil {
		return Image[uint8]{}, errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()
	return Decode8WithPool(f, pool)
}

// DecodeFile16WithPool opens path and decodes it with Decode16WithPool.
func DecodeFile16WithPool(path string, pool *WorkerPool) (Image[uint16], error) {
	f, err := os.Open(path)
	if err != nil {
		return Image[uint16]{}, errors.Wrap(ErrIoError, err.Error())
	}
	defer f.Close()
	return Decode16WithPool(f, pool)
}
