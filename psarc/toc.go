package psarc

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/rocksmith-tools/rsarc/internal/binreader"
	"github.com/rocksmith-tools/rsarc/internal/rscrypt"
)

// TocEntrySize is the conventional on-disk size of one TOC entry: 16 bytes
// of hash, a 4-byte big-endian start block, and two 40-bit big-endian
// quantities (length, offset).
const TocEntrySize = 30

// DefaultMaxBlockSizeEntries bounds the number of block-size entries read
// from the trailing block-size array, defending against pathological
// allocation on malformed input. Exposed as a tunable (see
// WithMaxBlockSizeEntries) rather than hard-coded, since archives with
// unusually large TOCs may legitimately need a higher ceiling.
const DefaultMaxBlockSizeEntries = 500

// TocEntry describes one entry in a PSARC archive: its identity (Hash),
// its placement in the block stream (StartBlock, Offset), and its
// uncompressed size (Length). Path is nil until BindManifest assigns it.
type TocEntry struct {
	Index      int
	Hash       [16]byte
	StartBlock uint32
	Length     uint64 // 40-bit on disk
	Offset     uint64 // 40-bit on disk

	// Path is the entry's name, bound once by BindManifest. It is nil
	// until then and is never reassigned afterward.
	Path *string
}

// HashHex renders Hash as the uppercase hex string real PSARC tools
// display (typically the MD5 of the entry's name).
func (e *TocEntry) HashHex() string {
	const hexDigits = "0123456789ABCDEF"
	buf := make([]byte, 0, 32)
	for _, b := range e.Hash {
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0xF])
	}
	return string(buf)
}

// Toc is the parsed table of contents: the ordered entries, whether the
// TOC region was encrypted on disk, and the per-block on-disk size index.
type Toc struct {
	Entries []TocEntry

	// Encrypted reflects the header's TOC_ENCRYPTED bit as read — it is
	// not re-derived from the TOC's content.
	Encrypted bool

	// ZipBlockSizes is indexed by global block index. An element of 0
	// means the block occupies exactly header.BlockSize bytes
	// uncompressed; a non-zero element is the on-disk size of that block
	// (compressed if it begins with the Zlib 0x78DA magic, raw
	// otherwise).
	ZipBlockSizes []uint32
}

// tocOptions carries the tunables a caller may override via OpenOption.
type tocOptions struct {
	maxBlockSizeEntries int
}

func defaultTocOptions() tocOptions {
	return tocOptions{maxBlockSizeEntries: DefaultMaxBlockSizeEntries}
}

// ReadToc parses the TOC described by header from r, which must be
// positioned at header.TocOffset. If the header's TOC_ENCRYPTED flag is
// set, the next header.TocSize-headerSize bytes are decrypted with
// AES-256-CFB (rscrypt.DecryptPSARCToc) before parsing; otherwise the
// entries are parsed directly from r.
func ReadToc(r io.Reader, header *Header, opts ...OpenOption) (*Toc, error) {
	o := defaultTocOptions()
	for _, opt := range opts {
		opt(&o)
	}

	encrypted := header.ArchiveFlags.Has(FlagTocEncrypted)

	var tocSource io.Reader
	if encrypted {
		plain, err := readAndDecryptToc(r, header)
		if err != nil {
			return nil, err
		}
		tocSource = bytes.NewReader(plain)
	} else {
		tocSource = r
	}

	br := binreader.New(tocSource)

	entries := make([]TocEntry, header.EntryCount)
	for i := range entries {
		var hash [16]byte
		for j := range hash {
			b, err := br.U8()
			if err != nil {
				return nil, wrapBinErr(err)
			}
			hash[j] = b
		}
		startBlock, err := br.U32BE()
		if err != nil {
			return nil, wrapBinErr(err)
		}
		length, err := br.U40BE()
		if err != nil {
			return nil, wrapBinErr(err)
		}
		offset, err := br.U40BE()
		if err != nil {
			return nil, wrapBinErr(err)
		}
		entries[i] = TocEntry{
			Index:      i,
			Hash:       hash,
			StartBlock: startBlock,
			Length:     length,
			Offset:     offset,
		}
	}

	tocEntriesBytes := int64(header.EntryCount) * int64(header.TocEntrySize)
	remaining := int64(header.TocSize) - headerSize - tocEntriesBytes
	if remaining < 0 {
		return nil, fmt.Errorf("%w: toc_size too small for %d entries of size %d",
			ErrMalformed, header.EntryCount, header.TocEntrySize)
	}

	bNum := blockSizeWidth(header.BlockSize)
	if bNum != 2 && bNum != 3 && bNum != 4 {
		return nil, fmt.Errorf("%w: b_num=%d", ErrUnsupportedBlockWidth, bNum)
	}

	zNum := int(remaining) / bNum
	if zNum > o.maxBlockSizeEntries {
		zNum = o.maxBlockSizeEntries
	}

	zipBlockSizes := make([]uint32, zNum)
	for i := range zipBlockSizes {
		var size uint32
		var err error
		switch bNum {
		case 2:
			var v uint16
			v, err = br.U16BE()
			size = uint32(v)
		case 3:
			size, err = br.U24BE()
		case 4:
			size, err = br.U32BE()
		}
		if err != nil {
			return nil, wrapBinErr(err)
		}
		zipBlockSizes[i] = size
	}

	return &Toc{
		Entries:       entries,
		Encrypted:     encrypted,
		ZipBlockSizes: zipBlockSizes,
	}, nil
}

// blockSizeWidth computes b_num = round(log_256(blockSize)), the byte
// width of each entry in the trailing block-size array. For the standard
// 65536-byte block this is 2.
func blockSizeWidth(blockSize uint32) int {
	return int(math.Round(math.Log(float64(blockSize)) / math.Log(256)))
}

func readAndDecryptToc(r io.Reader, header *Header) ([]byte, error) {
	tocSize := int(header.TocSize) - headerSize
	if tocSize < 0 {
		return nil, fmt.Errorf("%w: toc_size %d smaller than header", ErrMalformed, header.TocSize)
	}
	buf := make([]byte, tocSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading encrypted toc: %v", ErrTruncated, err)
	}
	if err := rscrypt.DecryptPSARCToc(buf); err != nil {
		return nil, fmt.Errorf("psarc: decrypting toc: %w", err)
	}
	return buf, nil
}
