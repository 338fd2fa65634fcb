package kdbxcrypto

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/twofish"
)

// BlockStream is a CBC-mode block cipher with PKCS#7 padding, used for the
// outer AES-256 and Twofish-256 ciphers (C2). It mirrors the teacher's
// crypto.AESEncrypter shape (key+iv at construction, Encrypt/Decrypt over a
// full buffer) generalized to any block.Cipher constructor.
type BlockStream struct {
	block cipher.Block
	iv    []byte
}

// NewAESCBC builds an AES-256-CBC cipher from a 32-byte key and a 16-byte IV.
func NewAESCBC(key, iv []byte) (*BlockStream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &BlockStream{block: block, iv: iv}, nil
}

// NewTwofishCBC builds a Twofish-256-CBC cipher from a 32-byte key and a
// 16-byte IV.
func NewTwofishCBC(key, iv []byte) (*BlockStream, error) {
	block, err := twofish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &BlockStream{block: block, iv: iv}, nil
}

// Encrypt pads data with PKCS#7 to the cipher's block size and encrypts it.
func (b *BlockStream) Encrypt(data []byte) []byte {
	padded := pkcs7Pad(data, b.block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(b.block, b.iv).CryptBlocks(out, padded)
	return out
}

// Decrypt decrypts a block-aligned ciphertext and strips PKCS#7 padding.
// Returns ErrPadding if data is not block-aligned or padding is malformed.
func (b *BlockStream) Decrypt(data []byte) ([]byte, error) {
	size := b.block.BlockSize()
	if len(data) == 0 || len(data)%size != 0 {
		return nil, ErrPadding
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(b.block, b.iv).CryptBlocks(out, data)
	return pkcs7Unpad(out, size)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrPadding
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > blockSize || padLen > n {
		return nil, ErrPadding
	}
	for i := n - padLen; i < n; i++ {
		if data[i] != byte(padLen) {
			return nil, ErrPadding
		}
	}
	return data[:n-padLen], nil
}
