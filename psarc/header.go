// Package psarc implements a reader for PSARC archives: the two-tier
// container format (encrypted/compressed table of contents, variable-width
// block-size index, block-aligned Deflate payload) used to ship Rocksmith
// song content on PC.
//
// An archive is a fixed header, followed by a table of entries describing
// each packed file's identity and placement, followed by a trailing array
// of per-block on-disk sizes used to walk the compressed payload region.
package psarc

import (
	"errors"
	"fmt"
	"io"

	"github.com/rocksmith-tools/rsarc/internal/binreader"
)

// ArchiveFlags is the bitmask in the PSARC header's ArchiveFlags field.
// Only TocEncrypted is given format-level meaning by this reader; the
// remaining bits are named (matching the unknown bits the original Rust
// parser carries as UNK1/UNK8/UNK16/.../UNK128 via bitflags) so a caller
// inspecting the raw value doesn't lose information, even though nothing
// in this package acts on them.
type ArchiveFlags uint32

// Known ArchiveFlags bits.
const (
	FlagNone         ArchiveFlags = 0
	FlagUnk1         ArchiveFlags = 1 << 0
	FlagUnk2         ArchiveFlags = 1 << 1
	FlagTocEncrypted ArchiveFlags = 1 << 2
	FlagUnk8         ArchiveFlags = 1 << 3
	FlagUnk16        ArchiveFlags = 1 << 4
	FlagUnk32        ArchiveFlags = 1 << 5
	FlagUnk64        ArchiveFlags = 1 << 6
	FlagUnk128       ArchiveFlags = 1 << 7
)

// Has reports whether f has all bits of mask set.
func (f ArchiveFlags) Has(mask ArchiveFlags) bool {
	return f&mask == mask
}

// Header is the fixed 32-byte PSARC archive header.
type Header struct {
	Identifier    string // 4-byte ASCII, expected "PSAR"
	Version       uint32
	Compression   string // 4-byte ASCII, expected "zlib"
	TocSize       uint32 // total byte length of header+TOC region
	TocEntrySize  uint32 // size of one TOC entry, conventionally 30
	EntryCount    uint32
	BlockSize     uint32 // typically 65536
	ArchiveFlags  ArchiveFlags

	// TocOffset is the stream offset immediately following the header.
	// Always 32 for valid files but recorded for robustness rather than
	// hard-coded, matching the original parser's behavior.
	TocOffset int64
}

const headerSize = 32

// ReadHeader reads the 32-byte header from the start of r. Validation is
// lenient: Identifier and Compression are captured but not asserted here —
// callers that require "PSAR"/"zlib" check Header.Identifier/Compression
// themselves (see Open, which does enforce it).
func ReadHeader(r io.ReadSeeker) (*Header, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("psarc: seeking to header: %w", err)
	}

	br := binreader.New(r)

	identifier, err := br.FixedString(4)
	if err != nil {
		return nil, wrapBinErr(err)
	}
	version, err := br.U32BE()
	if err != nil {
		return nil, wrapBinErr(err)
	}
	compression, err := br.FixedString(4)
	if err != nil {
		return nil, wrapBinErr(err)
	}
	tocSize, err := br.U32BE()
	if err != nil {
		return nil, wrapBinErr(err)
	}
	tocEntrySize, err := br.U32BE()
	if err != nil {
		return nil, wrapBinErr(err)
	}
	entryCount, err := br.U32BE()
	if err != nil {
		return nil, wrapBinErr(err)
	}
	blockSize, err := br.U32BE()
	if err != nil {
		return nil, wrapBinErr(err)
	}
	rawFlags, err := br.U32BE()
	if err != nil {
		return nil, wrapBinErr(err)
	}

	tocOffset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("psarc: locating toc offset: %w", err)
	}

	return &Header{
		Identifier:   identifier,
		Version:      version,
		Compression:  compression,
		TocSize:      tocSize,
		TocEntrySize: tocEntrySize,
		EntryCount:   entryCount,
		BlockSize:    blockSize,
		ArchiveFlags: ArchiveFlags(rawFlags),
		TocOffset:    tocOffset,
	}, nil
}

// wrapBinErr translates an internal/binreader error into this package's
// error taxonomy, preserving the wrapped chain so errors.Is still reaches
// binreader.ErrTruncated/ErrMalformed.
func wrapBinErr(err error) error {
	switch {
	case errors.Is(err, binreader.ErrTruncated):
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	case errors.Is(err, binreader.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	default:
		return fmt.Errorf("psarc: %w", err)
	}
}
