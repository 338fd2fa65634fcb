// Package secret provides a small zeroizing container for key material and
// decrypted protected values, so callers have one disciplined place to
// release sensitive bytes instead of relying on garbage collection.
package secret

// Bytes holds sensitive data that must be wiped once no longer needed.
// Parse and Dump keep the transformed key and the master key in one; the
// composite key hash, HMAC keys, inner-stream key and decrypted Protected
// field plaintexts are held in ordinary arrays, slices and strings and are
// not wiped by this package. A
// Bytes is not copyable in spirit — callers should pass *Bytes, never
// dereference and reassign the struct — since Go has no move semantics to
// enforce this at compile time.
type Bytes struct {
	data     []byte
	released bool
}

// New wraps an existing slice. Ownership of b transfers to the returned
// Bytes: the caller must not retain or mutate b afterward.
func New(b []byte) *Bytes {
	return &Bytes{data: b}
}

// Bytes returns the underlying slice. Calling this after Release panics,
// since that indicates a use-after-release bug rather than recoverable
// misuse.
func (s *Bytes) Bytes() []byte {
	if s.released {
		panic("secret: use of released secret.Bytes")
	}
	return s.data
}

// Len reports the secret's length without requiring a live, unreleased
// handle.
func (s *Bytes) Len() int {
	return len(s.data)
}

// Release overwrites the underlying memory with zeroes. It is idempotent
// and safe to call multiple times, including via defer on every exit path.
func (s *Bytes) Release() {
	if s.released {
		return
	}
	for i := range s.data {
		s.data[i] = 0
	}
	s.released = true
}
