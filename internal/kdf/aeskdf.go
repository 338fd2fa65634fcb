// Package kdf implements the key derivation functions KDBX4 supports for
// turning a composite key hash into a transformed key: AES-KDF (legacy) and
// Argon2 d/id (current default).
package kdf

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/vaultkeeper/kdbx4/internal/kdbxcrypto"
)

// AESKDF iterates block-encryption of the composite key hash under a random
// seed, the legacy KDBX transform: each 16-byte half of the 32-byte
// composite hash is AES-ECB-encrypted `rounds` times with the seed as key,
// then the two halves are concatenated and SHA-256'd to produce the
// transformed key.
func AESKDF(compositeHash [32]byte, seed []byte, rounds uint64) ([32]byte, error) {
	block, err := aes.NewCipher(seed)
	if err != nil {
		return [32]byte{}, err
	}

	var left, right [16]byte
	copy(left[:], compositeHash[:16])
	copy(right[:], compositeHash[16:])

	for i := uint64(0); i < rounds; i++ {
		block.Encrypt(left[:], left[:])
		block.Encrypt(right[:], right[:])
	}

	return kdbxcrypto.SHA256(left[:], right[:]), nil
}

// AESKDFRoundsFromParams reads the Rounds variant entry, stored as a u64 LE.
func AESKDFRoundsFromParams(raw []byte) uint64 {
	if len(raw) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(raw)
}
