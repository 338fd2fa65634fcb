package kdf

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// blake2bLong is Argon2's variable-length hash H', built from the
// fixed-size blake2b primitive per RFC 9106 section 3.3: for outputs of at
// most 64 bytes it is a single blake2b call keyed by the requested length;
// longer outputs are produced by repeatedly re-hashing 64-byte blocks and
// keeping the first half of each, as specified.
func blake2bLong(out []byte, in []byte) {
	outLen := len(out)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(outLen))

	if outLen <= 64 {
		h, _ := blake2b.New(outLen, nil)
		h.Write(lenBuf[:])
		h.Write(in)
		copy(out, h.Sum(nil))
		return
	}

	h, _ := blake2b.New512(nil)
	h.Write(lenBuf[:])
	h.Write(in)
	v := h.Sum(nil)

	copy(out[:32], v[:32])
	out = out[32:]

	for len(out) > 64 {
		h, _ := blake2b.New512(nil)
		h.Write(v)
		v = h.Sum(nil)
		copy(out[:32], v[:32])
		out = out[32:]
	}

	last, _ := blake2b.New(len(out), nil)
	last.Write(v)
	copy(out, last.Sum(nil))
}
