package blockzip

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	// BestCompression yields the 0x78 0xDA header real PSARC archives use.
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestUnzipBlockRoundTrip(t *testing.T) {
	want := []byte("HELLO\nWORLD")
	comp := zlibCompress(t, want)
	require.Equal(t, byte(0x78), comp[0])
	require.Equal(t, byte(0xDA), comp[1])

	got, err := UnzipBlock(bytes.NewReader(comp), len(comp))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestUnzipBlockTooSmall(t *testing.T) {
	_, err := UnzipBlock(bytes.NewReader([]byte{0x78}), 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestUnzipBlockBadStream(t *testing.T) {
	_, err := UnzipBlock(bytes.NewReader([]byte{0x78, 0xDA, 0x00, 0x00}), 4)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDecompressFailure))
}

func TestInflateZlibRoundTrip(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	comp := zlibCompress(t, want)

	got, err := InflateZlib(comp)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
