package sng

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/rocksmith-tools/rsarc/internal/rscrypt"
	"github.com/stretchr/testify/require"
)

// buildSngAsset assembles a full on-disk SNG asset: 24-byte header (with
// the given asset flags and IV) followed by body encrypted with AES-256
// CTR using SNGKeyPC, optionally zlib-wrapping a size hint + body first
// when the compressed flag is set.
func buildSngAsset(t *testing.T, assetFlags uint32, iv [16]byte, body []byte) []byte {
	t.Helper()

	var cipherInput []byte
	if assetFlags&rscrypt.SNGAssetFlagCompressed != 0 {
		var zbuf bytes.Buffer
		w, err := zlib.NewWriterLevel(&zbuf, zlib.BestCompression)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		sizeHint := make([]byte, 4)
		binary.LittleEndian.PutUint32(sizeHint, uint32(len(body)))
		cipherInput = append(sizeHint, zbuf.Bytes()...)
	} else {
		cipherInput = append([]byte(nil), body...)
	}

	block, err := aes.NewCipher(rscrypt.SNGKeyPC[:])
	require.NoError(t, err)
	ciphertext := make([]byte, len(cipherInput))
	cipher.NewCTR(block, iv[:]).XORKeyStream(ciphertext, cipherInput)

	header := make([]byte, 24)
	binary.LittleEndian.PutUint32(header[0:4], rscrypt.SNGIdentifier)
	binary.LittleEndian.PutUint32(header[4:8], assetFlags)
	copy(header[8:24], iv[:])

	return append(header, ciphertext...)
}

// emptyDocumentBody is 14 u32-LE zero counts (Bpms..Arrangements, Vocals
// being empty so the three symbol arrays are skipped) followed by a
// zeroed Metadata record (StringCount=0 so Tuning contributes no bytes).
func emptyDocumentBody() []byte {
	var buf bytes.Buffer
	for i := 0; i < 14; i++ {
		var zero [4]byte
		buf.Write(zero[:])
	}
	// Metadata: 4 float64 (32 bytes) + firstBeatLength/startTime (8) +
	// capoFretId (1) + lastConversionDateTime[32] + part(2) +
	// songLength(4) + stringCount(4, =0) + unk11/unk12(8) + maxDifficulty(4)
	buf.Write(make([]byte, 8*4))               // 4 float64s
	buf.Write(make([]byte, 4+4))               // firstBeatLength, startTime
	buf.Write(make([]byte, 1))                 // capoFretId
	buf.Write(make([]byte, 32))                // lastConversionDateTime
	buf.Write(make([]byte, 2))                 // part
	buf.Write(make([]byte, 4))                 // songLength
	buf.Write([]byte{0, 0, 0, 0})               // stringCount = 0
	buf.Write(make([]byte, 4+4))               // unk11, unk12
	buf.Write(make([]byte, 4))                 // maxDifficulty
	return buf.Bytes()
}

func TestParseEmptyDocumentUncompressed(t *testing.T) {
	var iv [16]byte
	copy(iv[:], []byte("0000000000000000"))

	asset := buildSngAsset(t, 0, iv, emptyDocumentBody())

	doc, err := Parse(asset)
	require.NoError(t, err)
	require.Empty(t, doc.Bpms)
	require.Empty(t, doc.Phrases)
	require.Empty(t, doc.Chords)
	require.Empty(t, doc.ChordNotes)
	require.Empty(t, doc.Vocals)
	require.Nil(t, doc.SymbolsHeaders)
	require.Nil(t, doc.SymbolsTextures)
	require.Nil(t, doc.SymbolDefinitions)
	require.Empty(t, doc.PhraseIterations)
	require.Empty(t, doc.Arrangements)
	require.Equal(t, int32(0), doc.Metadata.StringCount)
}

func TestParseCompressedDocument(t *testing.T) {
	var iv [16]byte
	copy(iv[:], []byte("zlibcompressedIV"))

	asset := buildSngAsset(t, rscrypt.SNGAssetFlagCompressed, iv, emptyDocumentBody())

	doc, err := Parse(asset)
	require.NoError(t, err)
	require.Empty(t, doc.Bpms)
}

func TestParseNotSng(t *testing.T) {
	raw := []byte{0x49, 0x00, 0x00, 0x00} // identifier 0x49, not 0x4A
	raw = append(raw, make([]byte, 40)...)
	_, err := Parse(raw)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotSng))
}

func TestParseTruncatedHeader(t *testing.T) {
	_, err := Parse([]byte{0x4A, 0x00, 0x00, 0x00})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestParseVocalsImplySymbolArrays(t *testing.T) {
	var buf bytes.Buffer
	// Bpms, Phrases, Chords, ChordNotes all empty (0 counts).
	for i := 0; i < 4; i++ {
		buf.Write([]byte{0, 0, 0, 0})
	}
	// Vocals: count = 1, one Vocal record.
	buf.Write([]byte{1, 0, 0, 0})
	buf.Write(make([]byte, 4))  // time
	buf.Write(make([]byte, 4))  // note
	buf.Write(make([]byte, 4))  // length
	buf.Write(make([]byte, 48)) // lyric

	// SymbolsHeaders: count = 0.
	buf.Write([]byte{0, 0, 0, 0})
	// SymbolsTextures: count = 0.
	buf.Write([]byte{0, 0, 0, 0})
	// SymbolDefinitions: count = 0.
	buf.Write([]byte{0, 0, 0, 0})

	// Remaining 9 counted arrays (PhraseIterations .. Arrangements): empty.
	for i := 0; i < 9; i++ {
		buf.Write([]byte{0, 0, 0, 0})
	}
	buf.Write(emptyDocumentMetadataOnly())

	var iv [16]byte
	copy(iv[:], []byte("vocalstestvector"))
	asset := buildSngAsset(t, 0, iv, buf.Bytes())

	doc, err := Parse(asset)
	require.NoError(t, err)
	require.Len(t, doc.Vocals, 1)
	require.NotNil(t, doc.SymbolsHeaders)
	require.NotNil(t, doc.SymbolsTextures)
	require.NotNil(t, doc.SymbolDefinitions)
	require.Empty(t, doc.SymbolsHeaders)
}

func emptyDocumentMetadataOnly() []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 8*4))
	buf.Write(make([]byte, 4+4))
	buf.Write(make([]byte, 1))
	buf.Write(make([]byte, 32))
	buf.Write(make([]byte, 2))
	buf.Write(make([]byte, 4))
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(make([]byte, 4+4))
	buf.Write(make([]byte, 4))
	return buf.Bytes()
}
