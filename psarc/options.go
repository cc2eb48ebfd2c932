package psarc

// OpenOption configures an Open or ReadToc call. Following the
// functional-options pattern used throughout arloliu/mebo's
// internal/options package, rather than a config struct or file — there is
// exactly one tunable here and it only matters to defend against malformed
// input.
type OpenOption func(*tocOptions)

// WithMaxBlockSizeEntries overrides DefaultMaxBlockSizeEntries, the
// defensive ceiling on how many entries are read from the TOC's trailing
// block-size array. Entries beyond the ceiling are not read (no error is
// returned). Lower it to bound allocation on suspect input; raise it for
// archives with unusually large TOCs.
func WithMaxBlockSizeEntries(n int) OpenOption {
	return func(o *tocOptions) {
		o.maxBlockSizeEntries = n
	}
}
