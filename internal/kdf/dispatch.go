package kdf

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// KDF UUIDs as recorded in the outer header's KdfParameters variant
// dictionary under the "$UUID" key.
var (
	UUIDAESKDF   = uuid.MustParse("c9d9f39a-628a-4460-bf74-0d08c18a4fea")
	UUIDArgon2d  = uuid.MustParse("ef636ddf-8c29-444b-91f7-a9a403e30a0c")
	UUIDArgon2id = uuid.MustParse("9e298b19-56db-4773-b23d-fc3ec6f0a1e6")
)

// VariantKind mirrors the VariantDictionary type tags (header component C6)
// closely enough for the KDF package to decode its own parameters without
// importing the header codec.
type VariantKind byte

const (
	VariantUInt32 VariantKind = 0x04
	VariantUInt64 VariantKind = 0x05
	VariantBool   VariantKind = 0x08
	VariantInt32  VariantKind = 0x0C
	VariantInt64  VariantKind = 0x0D
	VariantString VariantKind = 0x18
	VariantBytes  VariantKind = 0x42
)

// VariantValue is one decoded entry of a VariantDictionary.
type VariantValue struct {
	Kind VariantKind
	Raw  []byte
}

func (v VariantValue) Uint64() uint64 {
	if len(v.Raw) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(v.Raw)
}

func (v VariantValue) Uint32() uint32 {
	if len(v.Raw) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(v.Raw)
}

func (v VariantValue) Bytes() []byte {
	return v.Raw
}

// VariantParams is a decoded KdfParameters dictionary.
type VariantParams map[string]VariantValue

// Dispatch derives the transformed key using whichever KDF the
// VariantParams' "$UUID" entry names, applying the master seed's composite
// hash as input. It is the single call site callers use instead of picking
// AESKDF or Derive directly, mirroring the cipher/KDF UUID switch the
// header codec performs for ciphers.
func Dispatch(kdfUUID uuid.UUID, params VariantParams, compositeHash [32]byte) ([32]byte, error) {
	switch kdfUUID {
	case UUIDAESKDF:
		seed := params["S"].Bytes()
		rounds := params["R"].Uint64()
		if len(seed) != 32 || rounds == 0 {
			return [32]byte{}, ErrInvalidParams
		}
		return AESKDF(compositeHash, seed, rounds)

	case UUIDArgon2d, UUIDArgon2id:
		variant := VariantArgon2d
		if kdfUUID == UUIDArgon2id {
			variant = VariantArgon2id
		}
		p := Params{
			Variant:     variant,
			Version:     params["V"].Uint32(),
			Memory:      uint32(params["M"].Uint64() / 1024),
			Iterations:  uint32(params["I"].Uint64()),
			Parallelism: params["P"].Uint32(),
			Salt:        params["S"].Bytes(),
			KeyLen:      32,
		}
		out, err := Derive(compositeHash[:], p)
		if err != nil {
			return [32]byte{}, err
		}
		var key [32]byte
		copy(key[:], out)
		return key, nil

	default:
		return [32]byte{}, ErrUnknownKDF
	}
}
