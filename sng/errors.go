package sng

import "errors"

// Error kinds returned by this package.
var (
	// ErrNotSng indicates the 24-byte asset header's identifier did not
	// match the expected value (0x0000004A).
	ErrNotSng = errors.New("sng: not a valid sng asset")

	// ErrTruncated indicates a read ran past the end of the plaintext
	// body.
	ErrTruncated = errors.New("sng: truncated asset")

	// ErrMalformed indicates a counted array's length exceeded the sanity
	// ceiling, or another structural violation of the record schema.
	ErrMalformed = errors.New("sng: malformed asset")
)
