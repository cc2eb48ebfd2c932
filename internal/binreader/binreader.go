// Package binreader implements the fixed- and variable-width integer and
// string reads shared by the psarc and sng packages: both formats are
// densely packed little/big-endian binary streams with the occasional
// 24-bit or 40-bit quantity and zero-padded fixed-length string.
package binreader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrMalformed indicates a structural violation of the expected binary
// layout: a count that exceeds a sanity ceiling, or similar.
var ErrMalformed = errors.New("binreader: malformed input")

// ErrTruncated indicates the source ran out of bytes before a read could
// complete.
var ErrTruncated = errors.New("binreader: truncated input")

// Reader wraps an io.Reader with the primitive reads the PSARC and SNG
// formats are built from. It keeps no position state beyond what the
// underlying io.Reader tracks, so two Readers over independent cursors
// never interfere with each other.
type Reader struct {
	r io.Reader
}

// New wraps r in a Reader.
func New(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes: %v", ErrTruncated, n, err)
		}
		return nil, err
	}
	return buf, nil
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16BE reads a big-endian uint16.
func (r *Reader) U16BE() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U16LE reads a little-endian uint16.
func (r *Reader) U16LE() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32BE reads a big-endian uint32.
func (r *Reader) U32BE() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U32LE reads a little-endian uint32.
func (r *Reader) U32LE() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I16LE reads a little-endian int16.
func (r *Reader) I16LE() (int16, error) {
	v, err := r.U16LE()
	return int16(v), err
}

// I32LE reads a little-endian int32.
func (r *Reader) I32LE() (int32, error) {
	v, err := r.U32LE()
	return int32(v), err
}

// F32LE reads a little-endian IEEE-754 float32.
func (r *Reader) F32LE() (float32, error) {
	v, err := r.U32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// F64LE reads a little-endian IEEE-754 float64.
func (r *Reader) F64LE() (float64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// U24BE reads a 24-bit big-endian quantity (3 bytes, MSB first) into a uint32.
func (r *Reader) U24BE() (uint32, error) {
	b, err := r.readN(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// U40BE reads a 40-bit big-endian quantity (5 bytes, MSB first) into a uint64.
func (r *Reader) U40BE() (uint64, error) {
	b, err := r.readN(5)
	if err != nil {
		return 0, err
	}
	return uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4]), nil
}

// FixedString reads n bytes and decodes them as UTF-8 (with lossy
// replacement of invalid sequences), truncating at the first 0x00 byte.
// Exactly n bytes are always consumed regardless of where the terminator
// falls.
func (r *Reader) FixedString(n int) (string, error) {
	b, err := r.readN(n)
	if err != nil {
		return "", err
	}
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return decodeLossy(b[:end]), nil
}

// decodeLossy converts b to a string without pulling in a third-party
// UTF-8 library: each byte that does not begin a valid UTF-8 sequence is
// replaced with its own Unicode replacement character (U+FFFD). Unlike
// strings.ToValidUTF8, a run of invalid bytes is not collapsed into a
// single replacement.
func decodeLossy(b []byte) string {
	return string([]rune(string(b)))
}

// MaxCountCeiling bounds the element count accepted by CountU32LE to
// contain pathological allocation from malformed or hostile input.
const MaxCountCeiling = 1 << 20

// CountU32LE reads a u32 little-endian count, enforcing MaxCountCeiling.
func (r *Reader) CountU32LE() (uint32, error) {
	n, err := r.U32LE()
	if err != nil {
		return 0, err
	}
	if n > MaxCountCeiling {
		return 0, fmt.Errorf("%w: element count %d exceeds ceiling %d", ErrMalformed, n, MaxCountCeiling)
	}
	return n, nil
}
