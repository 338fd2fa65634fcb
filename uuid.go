package kdbx

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ID is a group or entry identifier, stored in the document as base64 text
// but backed by a real github.com/google/uuid.UUID so callers get
// comparison and string formatting for free.
type ID struct {
	uuid.UUID
}

// NewID returns a freshly generated random identifier.
func NewID() ID {
	return ID{uuid.New()}
}

// MarshalText encodes the identifier as standard base64, matching how
// group/entry UUID elements are represented in the document tree.
func (id ID) MarshalText() ([]byte, error) {
	text := make([]byte, base64.StdEncoding.EncodedLen(16))
	base64.StdEncoding.Encode(text, id.UUID[:])
	return text, nil
}

// UnmarshalText decodes a base64 identifier. An empty element (no text
// content) generates a fresh random identifier rather than erroring, since
// some exporters emit empty UUID elements for never-assigned references.
func (id *ID) UnmarshalText(text []byte) error {
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(decoded, text)
	if err != nil {
		return wrapErr(InvalidValueEncoding, "uuid is not valid base64", err)
	}
	if n == 0 {
		*id = NewID()
		return nil
	}
	if n != 16 {
		return newErr(InvalidValueEncoding, "decoded uuid is not 16 bytes")
	}
	copy(id.UUID[:], decoded[:16])
	return nil
}
