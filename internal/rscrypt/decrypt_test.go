package rscrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecryptPSARCTocRoundTrip(t *testing.T) {
	plain := []byte("hello table of contents, this is a test payload")
	block, err := aes.NewCipher(PSARCKey[:])
	require.NoError(t, err)
	enc := make([]byte, len(plain))
	cipher.NewCFBEncrypter(block, PSARCIV[:]).XORKeyStream(enc, plain)

	require.NoError(t, DecryptPSARCToc(enc))
	require.True(t, bytes.Equal(plain, enc))
}

func TestDecryptSNGCTRRoundTrip(t *testing.T) {
	plain := bytes.Repeat([]byte{0xAB}, 100) // spans multiple AES blocks
	var iv [16]byte
	copy(iv[:], []byte("0123456789abcdef"))

	block, err := aes.NewCipher(SNGKeyPC[:])
	require.NoError(t, err)
	enc := make([]byte, len(plain))
	cipher.NewCTR(block, iv[:]).XORKeyStream(enc, plain)

	require.NoError(t, DecryptSNGCTR(iv, enc))
	require.True(t, bytes.Equal(plain, enc))
}
