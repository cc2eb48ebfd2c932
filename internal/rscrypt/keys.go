package rscrypt

// PSARCKey is the fixed AES-256 key used to decrypt an encrypted PSARC
// table of contents. This is the file format's actual key, embedded
// verbatim — it is not a secret, it is a constant of the archive format.
var PSARCKey = [32]byte{
	0xC5, 0x3D, 0xB2, 0x38, 0x70, 0xA1, 0xA2, 0xF7,
	0x1C, 0xAE, 0x64, 0x06, 0x1F, 0xDD, 0x0E, 0x11,
	0x57, 0x30, 0x9D, 0xC8, 0x52, 0x04, 0xD4, 0xC5,
	0xBF, 0xDF, 0x25, 0x09, 0x0D, 0xF2, 0x57, 0x2C,
}

// PSARCIV is the fixed, all-zero IV used for PSARC TOC decryption.
var PSARCIV = [16]byte{}

// SNGKeyPC is the fixed AES-256 key used to decrypt the PC variant of the
// Rocksmith SNG asset body.
var SNGKeyPC = [32]byte{
	0xCB, 0x64, 0x8D, 0xF3, 0xD1, 0x2A, 0x16, 0xBF,
	0x71, 0x70, 0x14, 0x14, 0xE6, 0x96, 0x19, 0xEC,
	0x17, 0x1C, 0xCA, 0x5D, 0x2A, 0x14, 0x2E, 0x3E,
	0x59, 0xDE, 0x7A, 0xDD, 0xA1, 0x8A, 0x3A, 0x30,
}

// SNGIdentifier is the expected little-endian u32 at the start of an SNG
// asset header.
const SNGIdentifier = 0x0000004A

// SNGAssetFlagCompressed is bit 0 of the SNG asset flags: when set the
// decrypted body is a u32 LE size hint followed by a Zlib stream.
const SNGAssetFlagCompressed = 0x1
