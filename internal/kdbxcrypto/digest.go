// Package kdbxcrypto implements the primitive digests, block/stream
// ciphers and inner protected-value stream used by the KDBX4 codec.
package kdbxcrypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
)

// HMACSHA256 computes HMAC-SHA256 over segments concatenated in order,
// without an intermediate allocation of the concatenated buffer.
func HMACSHA256(key []byte, segments ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, s := range segments {
		mac.Write(s)
	}
	return mac.Sum(nil)
}

// SHA256 computes SHA-256 over segments concatenated in order.
func SHA256(segments ...[]byte) [32]byte {
	h := sha256.New()
	for _, s := range segments {
		h.Write(s)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SHA512 computes SHA-512 over segments concatenated in order.
func SHA512(segments ...[]byte) [64]byte {
	h := sha512.New()
	for _, s := range segments {
		h.Write(s)
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}
