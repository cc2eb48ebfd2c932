package psarc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 65536

// zlibCompress mirrors internal/blockzip's test helper: BestCompression
// produces the 0x78 0xDA magic this format detects.
func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// buildArchive assembles a minimal two-entry PSARC archive in memory:
// entry 0 is the raw (uncompressed) name manifest, entry 1 is payload
// stored zlib-compressed. Both fit in a single block.
func buildArchive(t *testing.T, names string, payload []byte) []byte {
	t.Helper()

	entry0 := []byte(names)
	entry1 := zlibCompress(t, payload)

	const headerLen = 32
	const entrySize = 30
	const entryCount = 2
	const bNum = 2 // width of a block-size entry for a 65536 block size

	tocEntriesBytes := entryCount * entrySize
	blockSizeBytes := 2 * bNum // one block per entry
	tocSize := headerLen + tocEntriesBytes + blockSizeBytes

	var buf bytes.Buffer

	// Header.
	buf.WriteString("PSAR")
	writeU32BE(&buf, 0x00010004) // version, arbitrary
	buf.WriteString("zlib")
	writeU32BE(&buf, uint32(tocSize))
	writeU32BE(&buf, entrySize)
	writeU32BE(&buf, entryCount)
	writeU32BE(&buf, testBlockSize)
	writeU32BE(&buf, 0) // ArchiveFlags: TOC not encrypted

	// TOC entries.
	writeTocEntry(&buf, 0, uint64(len(entry0)), uint64(tocSize))
	writeTocEntry(&buf, 1, uint64(len(payload)), uint64(tocSize+len(entry0)))

	// Block-size array: one 2-byte entry per block.
	writeU16BE(&buf, uint16(len(entry0)))
	writeU16BE(&buf, uint16(len(entry1)))

	buf.Write(entry0)
	buf.Write(entry1)

	return buf.Bytes()
}

func writeU32BE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16BE(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// writeTocEntry writes a 30-byte TOC entry: a 16-byte hash (zero, unused by
// these tests), a 4-byte BE start block, and two 40-bit BE quantities.
func writeTocEntry(buf *bytes.Buffer, startBlock uint32, length, offset uint64) {
	buf.Write(make([]byte, 16))
	writeU32BE(buf, startBlock)
	write40BE(buf, length)
	write40BE(buf, offset)
}

func write40BE(buf *bytes.Buffer, v uint64) {
	var b [5]byte
	b[0] = byte(v >> 32)
	b[1] = byte(v >> 24)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 8)
	b[4] = byte(v)
	buf.Write(b[:])
}

func TestOpenAndInflate(t *testing.T) {
	archive := buildArchive(t, "song.sng\n", []byte("the quick brown fox jumps over the lazy dog"))

	a, err := Open(bytes.NewReader(archive))
	require.NoError(t, err)
	require.Equal(t, "PSAR", a.Header.Identifier)
	require.Equal(t, "zlib", a.Header.Compression)
	require.Len(t, a.Entries(), 2)

	got, err := a.Inflate(&a.Toc.Entries[1])
	require.NoError(t, err)
	require.Equal(t, "the quick brown fox jumps over the lazy dog", string(got))
}

func TestInflateIsDeterministic(t *testing.T) {
	archive := buildArchive(t, "song.sng\n", []byte("repeat after me"))
	a, err := Open(bytes.NewReader(archive))
	require.NoError(t, err)

	first, err := a.Inflate(&a.Toc.Entries[1])
	require.NoError(t, err)
	second, err := a.Inflate(&a.Toc.Entries[1])
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBindManifest(t *testing.T) {
	archive := buildArchive(t, "audio/song.sng\n", []byte("payload"))
	a, err := Open(bytes.NewReader(archive))
	require.NoError(t, err)

	require.NoError(t, a.BindManifest())
	require.Equal(t, NamesBlockPath, *a.Toc.Entries[0].Path)
	require.Equal(t, "audio/song.sng", *a.Toc.Entries[1].Path)

	found := a.FindByFilename("song.sng")
	require.NotNil(t, found)
	require.Same(t, &a.Toc.Entries[1], found)
}

func TestOpenRejectsWrongIdentifier(t *testing.T) {
	archive := buildArchive(t, "x\n", []byte("y"))
	archive[0] = 'X' // corrupt "PSAR" -> "XSAR"

	_, err := Open(bytes.NewReader(archive))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestInflateConcurrentSafety(t *testing.T) {
	archive := buildArchive(t, "song.sng\n", []byte("concurrent read content, repeated for good measure"))
	a, err := Open(bytes.NewReader(archive))
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([][]byte, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := a.Inflate(&a.Toc.Entries[1])
			require.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		require.Equal(t, results[0], results[i])
	}
}
