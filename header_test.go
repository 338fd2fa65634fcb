package kdbx

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/alecthomas/assert"

	"github.com/vaultkeeper/kdbx4/internal/kdf"
)

func TestHeaderWriteReadRoundTrip(t *testing.T) {
	want := &Header{
		MinorVersion:     0,
		MajorVersion:     4,
		Comment:          []byte("hello"),
		CipherID:         CipherAES256,
		CompressionFlags: GzipCompression,
		MasterSeed:       randomBytes(t, 32),
		EncryptionIV:     randomBytes(t, 16),
		KdfParameters:    argon2idParams(t),
	}

	var buf bytes.Buffer
	raw, err := want.writeTo(&buf)
	assert.Nil(t, err)
	assert.Equal(t, raw, buf.Bytes())

	got, err := readHeader(bytes.NewReader(buf.Bytes()))
	assert.Nil(t, err)
	assert.Equal(t, want.CipherID, got.CipherID)
	assert.Equal(t, want.CompressionFlags, got.CompressionFlags)
	assert.Equal(t, want.MasterSeed, got.MasterSeed)
	assert.Equal(t, want.EncryptionIV, got.EncryptionIV)
	assert.Equal(t, want.Comment, got.Comment)

	kdfUUID, err := got.kdfUUID()
	assert.Nil(t, err)
	assert.Equal(t, kdf.UUIDArgon2id, kdfUUID)
}

func TestHeaderRejectsWrongBaseMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	_, err := readHeader(&buf)
	assert.NotNil(t, err)
	kdbxErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, InvalidMagic, kdbxErr.Kind)
}

func TestHeaderRejectsMissingRequiredField(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, BaseMagic)
	binary.Write(&buf, binary.LittleEndian, VersionMagic)
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(4))

	cipherID := CipherAES256
	assert.Nil(t, writeField(&buf, fieldCipherID, cipherID[:]))
	// KdfParameters, MasterSeed, EncryptionIV intentionally omitted.
	assert.Nil(t, writeField(&buf, fieldEndOfHeader, nil))

	_, err := readHeader(bytes.NewReader(buf.Bytes()))
	assert.NotNil(t, err)
	kdbxErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, MissingRequiredHeaderField, kdbxErr.Kind)
}

func TestVariantDictionaryRoundTrip(t *testing.T) {
	params := aesKdfParams(t)
	raw, err := writeVariantDictionary(params)
	assert.Nil(t, err)

	got, err := readVariantDictionary(raw)
	assert.Nil(t, err)
	assert.Equal(t, params["R"].Uint64(), got["R"].Uint64())
	assert.Equal(t, params["S"].Bytes(), got["S"].Bytes())
}

func TestVariantDictionaryDeterministicOrdering(t *testing.T) {
	params := argon2idParams(t)
	first, err := writeVariantDictionary(params)
	assert.Nil(t, err)
	second, err := writeVariantDictionary(params)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
}
