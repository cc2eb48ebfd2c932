package binreader

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU40BERoundTrip(t *testing.T) {
	// The maximum 40-bit value must round-trip through all five bytes.
	r := New(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}))
	v, err := r.U40BE()
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40-1), v)
}

func TestU40BELiteral(t *testing.T) {
	// A known 5-byte big-endian literal decodes to the expected value.
	r := New(bytes.NewReader([]byte{0x00, 0x00, 0x12, 0x34, 0x56}))
	v, err := r.U40BE()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0000123456), v)
}

func TestU24BE(t *testing.T) {
	r := New(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	v, err := r.U24BE()
	require.NoError(t, err)
	require.Equal(t, uint32(0x010203), v)
}

func TestFixedStringTruncatesAtZero(t *testing.T) {
	r := New(bytes.NewReader([]byte{'h', 'i', 0x00, 'X', 'X'}))
	s, err := r.FixedString(5)
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestFixedStringNoTerminator(t *testing.T) {
	r := New(bytes.NewReader([]byte{'h', 'e', 'l', 'l', 'o'}))
	s, err := r.FixedString(5)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestFixedStringConsumesExactlyN(t *testing.T) {
	buf := bytes.NewReader([]byte{'a', 0x00, 0x00, 0x00, 'z'})
	r := New(buf)
	s, err := r.FixedString(4)
	require.NoError(t, err)
	require.Equal(t, "a", s)
	// Exactly 4 bytes consumed, so 'z' remains.
	tail, err := r.U8()
	require.NoError(t, err)
	require.Equal(t, uint8('z'), tail)
}

func TestTruncatedRead(t *testing.T) {
	r := New(bytes.NewReader([]byte{0x01}))
	_, err := r.U32LE()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestCountU32LECeiling(t *testing.T) {
	r := New(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	_, err := r.CountU32LE()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestFloatRoundTrips(t *testing.T) {
	r := New(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 0, 0}))
	f32, err := r.F32LE()
	require.NoError(t, err)
	require.Equal(t, float32(0), f32)
	f64, err := r.F64LE()
	require.NoError(t, err)
	require.Equal(t, float64(0), f64)
}
