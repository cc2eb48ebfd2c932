// Package rscrypt implements the two stream-cipher modes used by the
// Rocksmith file formats: AES-256-CFB with a zero IV for the PSARC table
// of contents, and AES-256-CTR with a big-endian 128-bit counter for the
// SNG asset body. Both use fixed keys embedded in the binary (keys.go) —
// they are format constants, not secrets.
//
// Both modes build on crypto/aes and crypto/cipher directly. No third-party
// AES package is used: none of the retrieved example repos reach for one
// either (barnettlynn/nfctools/pkg/ntag424 and sixafter/nanoid's AES-CTR
// DRBG both build on crypto/aes + crypto/cipher), and Go's standard CTR
// implementation already increments its counter as a big-endian integer
// over the whole IV, which is exactly the behavior the SNG format requires.
package rscrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// ErrCryptoFailure wraps failures reported by the underlying cipher
// construction (e.g. a malformed key length).
var ErrCryptoFailure = errors.New("rscrypt: crypto failure")

// DecryptPSARCToc decrypts data in place using AES-256-CFB with the fixed
// PSARC key and an all-zero IV. Decryption is stateless: every call starts
// a fresh cipher stream, matching the format's requirement that the TOC be
// decryptable independent of any other archive state.
func DecryptPSARCToc(data []byte) error {
	block, err := aes.NewCipher(PSARCKey[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	stream := cipher.NewCFBDecrypter(block, PSARCIV[:])
	stream.XORKeyStream(data, data)
	return nil
}

// DecryptSNGCTR decrypts ciphertext in place using AES-256-CTR with the
// fixed SNG PC key and the given 16-byte IV (the initial counter value).
func DecryptSNGCTR(iv [16]byte, ciphertext []byte) error {
	block, err := aes.NewCipher(SNGKeyPC[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	stream := cipher.NewCTR(block, iv[:])
	stream.XORKeyStream(ciphertext, ciphertext)
	return nil
}
