package kdbxcrypto

import "golang.org/x/crypto/chacha20"

// ChaChaOuter is the ChaCha20 outer cipher (no CBC framing, no padding —
// the outer envelope chunks content but the stream itself is unframed).
type ChaChaOuter struct {
	key, nonce []byte
}

// NewChaChaOuter builds a ChaCha20 outer cipher from a 32-byte key and a
// 12-byte nonce (the header's OuterIV field for this cipher choice).
func NewChaChaOuter(key, nonce []byte) (*ChaChaOuter, error) {
	// validated eagerly so construction errors surface before any data flows
	if _, err := chacha20.NewUnauthenticatedCipher(key, nonce); err != nil {
		return nil, err
	}
	return &ChaChaOuter{key: key, nonce: nonce}, nil
}

func (c *ChaChaOuter) Encrypt(data []byte) []byte {
	stream, _ := chacha20.NewUnauthenticatedCipher(c.key, c.nonce)
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out
}

// Decrypt is identical to Encrypt: ChaCha20 is a symmetric keystream XOR.
func (c *ChaChaOuter) Decrypt(data []byte) ([]byte, error) {
	return c.Encrypt(data), nil
}
