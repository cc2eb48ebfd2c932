// Package blockzip implements block-granularity decompression for PSARC
// payload blocks and the SNG asset's Zlib-wrapped body. It uses
// klauspost/compress, the compression library the example corpus already
// depends on (arloliu/mebo/compress wraps the same package for its own
// block codec) in place of the standard library's compress/flate and
// compress/zlib.
package blockzip

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// ErrTruncated indicates a declared block size too small to contain even
// the Zlib header.
var ErrTruncated = errors.New("blockzip: truncated block")

// ErrDecompressFailure wraps a failure reported by the Deflate/Zlib reader.
var ErrDecompressFailure = errors.New("blockzip: decompress failure")

// ZlibMagic is the two-byte big-endian prefix of a Zlib stream at the
// default compression level. Per spec, only this exact prefix is treated
// as "compressed" — other valid Zlib header bytes (0x7801, 0x789C) are
// deliberately treated as raw, matching what real PSARC archives produce.
const ZlibMagic = 0x78DA

// UnzipBlock reads declaredSize bytes from r (a Zlib header followed by a
// raw Deflate stream) and returns the fully decompressed block.
//
// It advances past the 2-byte Zlib header, reads declaredSize-2 bytes as a
// raw Deflate stream, and inflates to completion. The output length is
// whatever the Deflate stream produces; callers bound it by the archive's
// block_size and by truncating the accumulated entry payload.
func UnzipBlock(r io.Reader, declaredSize int) ([]byte, error) {
	if declaredSize < 2 {
		return nil, fmt.Errorf("%w: declared size %d < 2", ErrTruncated, declaredSize)
	}

	var zlibHeader [2]byte
	if _, err := io.ReadFull(r, zlibHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: reading zlib header: %v", ErrTruncated, err)
	}

	compSize := declaredSize - 2
	compData := make([]byte, compSize)
	if _, err := io.ReadFull(r, compData); err != nil {
		return nil, fmt.Errorf("%w: reading %d compressed bytes: %v", ErrTruncated, compSize, err)
	}

	fr := flate.NewReader(bytes.NewReader(compData))
	defer fr.Close()

	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailure, err)
	}
	return out, nil
}

// InflateZlib decompresses a complete Zlib-wrapped Deflate stream, as used
// by the SNG asset's compressed body (the stream immediately follows the
// 4-byte uncompressed-size hint).
func InflateZlib(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailure, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailure, err)
	}
	return out, nil
}
