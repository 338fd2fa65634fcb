package kdbx

import (
	"crypto/subtle"
	"encoding/binary"
	"io"

	"github.com/vaultkeeper/kdbx4/internal/kdbxcrypto"
)

// headerHashes is the SHA-256 and HMAC-SHA256 of the raw header bytes that
// follows the header itself on the wire, binding the header to the body
// before any envelope frame is read.
type headerHashes struct {
	SHA256 [32]byte
	HMAC   [32]byte
}

func readHeaderHashes(r io.Reader) (*headerHashes, error) {
	hh := &headerHashes{}
	if _, err := io.ReadFull(r, hh.SHA256[:]); err != nil {
		return nil, wrapErr(IncompleteInput, "reading header sha256", err)
	}
	if _, err := io.ReadFull(r, hh.HMAC[:]); err != nil {
		return nil, wrapErr(IncompleteInput, "reading header hmac", err)
	}
	return hh, nil
}

func (hh *headerHashes) writeTo(w io.Writer) error {
	if _, err := w.Write(hh.SHA256[:]); err != nil {
		return err
	}
	_, err := w.Write(hh.HMAC[:])
	return err
}

func validateHeaderSHA256(raw []byte, want [32]byte) error {
	got := kdbxcrypto.SHA256(raw)
	if subtle.ConstantTimeCompare(got[:], want[:]) == 0 {
		return newErr(HeaderHashMismatch, "header sha256 does not match")
	}
	return nil
}

// headerHMACKey derives the header-authenticating HMAC key: the same
// per-frame key schedule envelope frames use, but with the frame index
// fixed at the all-ones sentinel reserved for the header itself.
func headerHMACKey(masterSeed, transformedKey []byte) []byte {
	base := kdbxcrypto.SHA512(masterSeed, transformedKey, []byte{0x01})

	var sentinel [8]byte
	binary.LittleEndian.PutUint64(sentinel[:], ^uint64(0))

	out := kdbxcrypto.SHA512(sentinel[:], base[:])
	return out[:]
}

func validateHeaderHMAC(raw []byte, hmacKey []byte, want [32]byte) error {
	got := kdbxcrypto.HMACSHA256(hmacKey, raw)
	if subtle.ConstantTimeCompare(got, want[:]) == 0 {
		return newErr(HeaderHashMismatch, "header hmac does not match: wrong password or key file")
	}
	return nil
}
