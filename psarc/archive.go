package psarc

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/rocksmith-tools/rsarc/internal/blockzip"
)

// Archive ties a parsed Header and Toc to the archive's full byte buffer.
// It is immutable after Open except for the one-time BindManifest call.
// All entry inflation reads only this buffer through a local cursor, so a
// *Archive is safe to use concurrently from multiple goroutines.
type Archive struct {
	Header *Header
	Toc    *Toc

	// data is the entire archive file, slurped into memory at Open time.
	// It is the single shared immutable backing store for every entry's
	// inflation — the original source stream is not retained.
	data []byte
}

// Open reads a PSARC archive from r: its header, its TOC (decrypting it
// first if the header's TOC_ENCRYPTED flag is set), and then the entire
// file content into an owned buffer used for all later entry inflation.
//
// Open enforces the identifier/compression invariants that ReadHeader
// itself leaves to the caller: Identifier must be "PSAR" and Compression
// must be "zlib".
func Open(r io.ReadSeeker, opts ...OpenOption) (*Archive, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if header.Identifier != "PSAR" {
		return nil, fmt.Errorf("%w: identifier %q, want \"PSAR\"", ErrMalformed, header.Identifier)
	}
	if header.Compression != "zlib" {
		return nil, fmt.Errorf("%w: compression %q, want \"zlib\"", ErrMalformed, header.Compression)
	}

	toc, err := ReadToc(r, header, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("psarc: rewinding to slurp archive: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("psarc: reading archive into memory: %w", err)
	}

	return &Archive{Header: header, Toc: toc, data: data}, nil
}

// Entries returns the archive's TOC entries in index order. The returned
// slice shares storage with the archive; callers must not mutate it.
func (a *Archive) Entries() []TocEntry {
	return a.Toc.Entries
}

// FindByFilename looks up an entry whose bound Path's last path component
// matches name. It returns nil if no entry matches or if BindManifest has
// not been called.
func (a *Archive) FindByFilename(name string) *TocEntry {
	for i := range a.Toc.Entries {
		e := &a.Toc.Entries[i]
		if e.Path == nil {
			continue
		}
		if path.Base(*e.Path) == name {
			return e
		}
	}
	return nil
}

// Inflate resolves entry's bytes by walking the block-size array starting
// at entry.StartBlock, decompressing each compressed block, and truncating
// the accumulated output to exactly entry.Length bytes.
//
// This is a pure function of the Archive's immutable buffer and the
// Toc's immutable ZipBlockSizes: it constructs its own local cursor, so it
// is safe to call concurrently for the same or different entries.
func (a *Archive) Inflate(entry *TocEntry) ([]byte, error) {
	blockSize := int(a.Header.BlockSize)
	numBlocks := ceilDiv(entry.Length, uint64(blockSize))
	if numBlocks == 0 {
		numBlocks = 1
	}
	lastBlock := entry.StartBlock + uint32(numBlocks) - 1

	cursor := bytes.NewReader(a.data)
	if _, err := cursor.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("psarc: seeking to entry offset %d: %w", entry.Offset, err)
	}

	var output []byte
	for block := entry.StartBlock; block <= lastBlock; block++ {
		zsize := uint32(0)
		if int(block) < len(a.Toc.ZipBlockSizes) {
			zsize = a.Toc.ZipBlockSizes[block]
		}

		if zsize == 0 {
			buf := make([]byte, blockSize)
			n, err := io.ReadFull(cursor, buf)
			if err != nil && n == 0 {
				return nil, fmt.Errorf("%w: reading uncompressed block %d: %v", ErrTruncated, block, err)
			}
			output = append(output, buf[:n]...)
			continue
		}

		peekPos, err := cursor.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("psarc: tracking cursor: %w", err)
		}
		var magic [2]byte
		if _, err := io.ReadFull(cursor, magic[:]); err != nil {
			return nil, fmt.Errorf("%w: peeking block %d header: %v", ErrTruncated, block, err)
		}
		if _, err := cursor.Seek(peekPos, io.SeekStart); err != nil {
			return nil, fmt.Errorf("psarc: rewinding peek: %w", err)
		}

		if uint16(magic[0])<<8|uint16(magic[1]) == blockzip.ZlibMagic {
			decompressed, err := blockzip.UnzipBlock(cursor, int(zsize))
			if err != nil {
				return nil, fmt.Errorf("psarc: inflating block %d: %w", block, err)
			}
			output = append(output, decompressed...)
		} else {
			buf := make([]byte, zsize)
			if _, err := io.ReadFull(cursor, buf); err != nil {
				return nil, fmt.Errorf("%w: reading raw block %d: %v", ErrTruncated, block, err)
			}
			output = append(output, buf...)
		}
	}

	if uint64(len(output)) > entry.Length {
		output = output[:entry.Length]
	}
	return output, nil
}

func ceilDiv(n, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}

// NamesBlockPath is the canonical path assigned to entry 0 once
// BindManifest has run.
const NamesBlockPath = "NamesBlock.bin"

// BindManifest inflates entry 0 as the newline-delimited name manifest and
// assigns Path on entries 1..N-1 from successive lines. Path is otherwise
// left unassigned until this call, and is assigned exactly once per entry.
//
// If the archive has no entries, BindManifest is a no-op. A UTF-8 decode
// failure on the manifest text returns ErrMalformed and leaves every entry
// (including entry 0) without a Path.
func (a *Archive) BindManifest() error {
	entries := a.Toc.Entries
	if len(entries) == 0 {
		return nil
	}

	nameBlock := NamesBlockPath
	entries[0].Path = &nameBlock

	raw, err := a.Inflate(&entries[0])
	if err != nil {
		entries[0].Path = nil
		return fmt.Errorf("psarc: inflating name manifest: %w", err)
	}
	if !utf8.Valid(raw) {
		entries[0].Path = nil
		return fmt.Errorf("%w: name manifest is not valid UTF-8", ErrMalformed)
	}

	text := string(raw)
	lines := strings.Split(text, "\n")
	// Trim a trailing \r left over from \r\n line endings.
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	// A trailing empty element from a final "\n" doesn't name an entry.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	limit := len(entries) - 1
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		line := lines[i]
		entries[i+1].Path = &line
	}
	return nil
}
