package kdbx

import (
	"encoding/base64"
	"os"
	"regexp"

	"github.com/vaultkeeper/kdbx4/internal/kdbxcrypto"
	"github.com/vaultkeeper/kdbx4/internal/secret"
)

// Credentials holds the pre-hashed components that form the composite key
// (C4): a password, a key file digest, and/or a Windows user auth digest.
// Each field already holds the 32-byte digest form of its source material
// (SHA-256, except a key file of exactly 32 bytes, which is kept as is), mirroring
// the teacher's DBCredentials convention of storing components pre-hashed.
type Credentials struct {
	Password []byte
	KeyFile  []byte
	Windows  []byte
}

// NewPasswordCredentials hashes password and returns Credentials using only
// that component.
func NewPasswordCredentials(password string) *Credentials {
	hash := kdbxcrypto.SHA256([]byte(password))
	return &Credentials{Password: hash[:]}
}

// NewPasswordAndKeyFileCredentials combines a password with a key file on
// disk at path.
func NewPasswordAndKeyFileCredentials(password, path string) (*Credentials, error) {
	key, err := ParseKeyFile(path)
	if err != nil {
		return nil, err
	}
	hash := kdbxcrypto.SHA256([]byte(password))
	return &Credentials{Password: hash[:], KeyFile: key}, nil
}

var keyFileDataPattern = regexp.MustCompile(`<Data>(.+)</Data>`)

// ParseKeyFile reads a key file (raw binary or the XML key-file format) and
// returns its 32-byte key component: a key of exactly 32 bytes is used as
// is, anything else is SHA-256 hashed.
func ParseKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseKeyFileData(data)
}

// ParseKeyFileData extracts the key component from raw key file bytes.
func ParseKeyFileData(data []byte) ([]byte, error) {
	if keyFileDataPattern.Match(data) {
		base := keyFileDataPattern.FindSubmatch(data)[1]
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(base)))
		n, err := base64.StdEncoding.Decode(decoded, base)
		if err != nil {
			return nil, err
		}
		data = decoded[:n]
	}

	if len(data) == 32 {
		return data, nil
	}
	hash := kdbxcrypto.SHA256(data)
	return hash[:], nil
}

// buildCompositeKey computes the composite hash (C4): SHA-256 of the
// concatenation of whichever component digests are present, in
// password/keyfile/windows order.
func (c *Credentials) buildCompositeKey() [32]byte {
	var segments [][]byte
	if c.Password != nil {
		segments = append(segments, c.Password)
	}
	if c.KeyFile != nil {
		segments = append(segments, c.KeyFile)
	}
	if c.Windows != nil {
		segments = append(segments, c.Windows)
	}
	return kdbxcrypto.SHA256(segments...)
}

// deriveMasterKey computes the final outer-cipher key (C4/C5): SHA-256 of
// masterSeed || transformedKey.
func deriveMasterKey(masterSeed []byte, transformedKey []byte) *secret.Bytes {
	h := kdbxcrypto.SHA256(masterSeed, transformedKey)
	return secret.New(h[:])
}
