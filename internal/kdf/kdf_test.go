package kdf

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/google/uuid"
)

func TestAESKDFDeterministic(t *testing.T) {
	var composite [32]byte
	for i := range composite {
		composite[i] = byte(i)
	}
	seed := bytes.Repeat([]byte{0x42}, 32)

	got1, err := AESKDF(composite, seed, 10)
	assert.Nil(t, err)
	got2, err := AESKDF(composite, seed, 10)
	assert.Nil(t, err)
	assert.Equal(t, got1, got2)
}

func TestAESKDFDifferentRoundsDifferentOutput(t *testing.T) {
	var composite [32]byte
	seed := bytes.Repeat([]byte{0x01}, 32)

	a, err := AESKDF(composite, seed, 5)
	assert.Nil(t, err)
	b, err := AESKDF(composite, seed, 6)
	assert.Nil(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESKDFRejectsBadSeedLength(t *testing.T) {
	var composite [32]byte
	_, err := AESKDF(composite, []byte{1, 2, 3}, 1)
	assert.NotNil(t, err)
}

func TestDeriveArgon2idDeterministic(t *testing.T) {
	p := Params{
		Variant:     VariantArgon2id,
		Version:     0x13,
		Memory:      8,
		Iterations:  2,
		Parallelism: 1,
		Salt:        bytes.Repeat([]byte{0x01}, 16),
		KeyLen:      32,
	}
	a, err := Derive([]byte("password"), p)
	assert.Nil(t, err)
	b, err := Derive([]byte("password"), p)
	assert.Nil(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 32, len(a))
}

func TestDeriveArgon2dDiffersFromArgon2id(t *testing.T) {
	base := Params{
		Version:     0x13,
		Memory:      8,
		Iterations:  2,
		Parallelism: 1,
		Salt:        bytes.Repeat([]byte{0x02}, 16),
		KeyLen:      32,
	}
	d := base
	d.Variant = VariantArgon2d
	id := base
	id.Variant = VariantArgon2id

	outD, err := Derive([]byte("password"), d)
	assert.Nil(t, err)
	outID, err := Derive([]byte("password"), id)
	assert.Nil(t, err)
	assert.NotEqual(t, outD, outID)
}

func TestDeriveRejectsZeroParallelism(t *testing.T) {
	p := Params{Variant: VariantArgon2id, Memory: 8, Iterations: 2, Salt: []byte("salt"), KeyLen: 32}
	_, err := Derive([]byte("password"), p)
	assert.NotNil(t, err)
}

func TestDispatchUnknownKDF(t *testing.T) {
	_, err := Dispatch(uuid.UUID{}, VariantParams{}, [32]byte{})
	assert.NotNil(t, err)
}

func TestDispatchAESKDF(t *testing.T) {
	seed := bytes.Repeat([]byte{0x09}, 32)
	var rounds [8]byte
	rounds[0] = 5
	params := VariantParams{
		"S": {Kind: VariantBytes, Raw: seed},
		"R": {Kind: VariantUInt64, Raw: rounds[:]},
	}
	var composite [32]byte
	key, err := Dispatch(UUIDAESKDF, params, composite)
	assert.Nil(t, err)

	direct, err := AESKDF(composite, seed, 5)
	assert.Nil(t, err)
	assert.Equal(t, direct, key)
}
