package sng

import (
	"encoding/binary"
	"fmt"

	"github.com/rocksmith-tools/rsarc/internal/blockzip"
	"github.com/rocksmith-tools/rsarc/internal/rscrypt"
)

// assetFlagCompressed is bit 0 of the SNG asset header's flags field.
const assetFlagCompressed = rscrypt.SNGAssetFlagCompressed

// decryptBody consumes the SNG asset header (24 bytes: u32 LE identifier,
// u32 LE asset flags, 16-byte IV) from raw, decrypts the remainder with
// AES-256-CTR-BE, and — if the compressed flag is set — strips the 4-byte
// uncompressed-size hint and inflates the Zlib stream that follows.
//
// It returns the final plaintext body ready for sequential record reads.
func decryptBody(raw []byte) ([]byte, error) {
	if len(raw) < 24 {
		return nil, fmt.Errorf("%w: asset shorter than 24-byte header (%d bytes)", ErrTruncated, len(raw))
	}

	identifier := binary.LittleEndian.Uint32(raw[0:4])
	if identifier != rscrypt.SNGIdentifier {
		return nil, fmt.Errorf("%w: identifier 0x%08X, want 0x%08X", ErrNotSng, identifier, uint32(rscrypt.SNGIdentifier))
	}
	assetFlags := binary.LittleEndian.Uint32(raw[4:8])

	var iv [16]byte
	copy(iv[:], raw[8:24])

	ciphertext := make([]byte, len(raw)-24)
	copy(ciphertext, raw[24:])

	if err := rscrypt.DecryptSNGCTR(iv, ciphertext); err != nil {
		return nil, fmt.Errorf("sng: decrypting body: %w", err)
	}

	if assetFlags&assetFlagCompressed == 0 {
		return ciphertext, nil
	}

	if len(ciphertext) < 4 {
		return nil, fmt.Errorf("%w: compressed body shorter than its size hint", ErrTruncated)
	}
	// The uncompressed-size hint (ciphertext[:4]) is informational only;
	// the Zlib stream's own end-of-stream marker determines the actual
	// output length.
	compressed := ciphertext[4:]
	body, err := blockzip.InflateZlib(compressed)
	if err != nil {
		return nil, fmt.Errorf("sng: decompressing body: %w", err)
	}
	return body, nil
}
