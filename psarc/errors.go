package psarc

import "errors"

// Error kinds returned by this package, per the error taxonomy of the
// format: I/O failures are returned as-is (wrapped with context), and the
// following sentinels identify the rest.
var (
	// ErrMalformed indicates a structural violation of the PSARC layout:
	// a wrong identifier or compression name, a negative remaining-bytes
	// computation, or invalid UTF-8 in the name manifest.
	ErrMalformed = errors.New("psarc: malformed archive")

	// ErrTruncated indicates the source ran out of bytes before a read
	// could complete.
	ErrTruncated = errors.New("psarc: truncated archive")

	// ErrUnsupportedBlockWidth indicates the TOC's computed block-size
	// width (b_num) is not one of the supported values 2, 3, or 4.
	ErrUnsupportedBlockWidth = errors.New("psarc: unsupported block-size width")
)
