package kdbx

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	masterSeed := randomBytes(t, 32)
	transformedKey := randomBytes(t, 32)
	payload := randomBytes(t, 5000)

	var buf bytes.Buffer
	assert.Nil(t, encodeEnvelope(&buf, payload, masterSeed, transformedKey))

	got, err := decodeEnvelope(buf.Bytes(), masterSeed, transformedKey)
	assert.Nil(t, err)
	assert.Equal(t, payload, got)
}

func TestEnvelopeRoundTripEmptyPayload(t *testing.T) {
	masterSeed := randomBytes(t, 32)
	transformedKey := randomBytes(t, 32)

	var buf bytes.Buffer
	assert.Nil(t, encodeEnvelope(&buf, nil, masterSeed, transformedKey))

	got, err := decodeEnvelope(buf.Bytes(), masterSeed, transformedKey)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(got))
}

func TestEnvelopeMultiFramePayload(t *testing.T) {
	masterSeed := randomBytes(t, 32)
	transformedKey := randomBytes(t, 32)
	payload := randomBytes(t, maxFrameSize*2+123)

	var buf bytes.Buffer
	assert.Nil(t, encodeEnvelope(&buf, payload, masterSeed, transformedKey))

	got, err := decodeEnvelope(buf.Bytes(), masterSeed, transformedKey)
	assert.Nil(t, err)
	assert.Equal(t, payload, got)
}

func TestEnvelopeDetectsFrameTamper(t *testing.T) {
	masterSeed := randomBytes(t, 32)
	transformedKey := randomBytes(t, 32)
	payload := randomBytes(t, 64)

	var buf bytes.Buffer
	assert.Nil(t, encodeEnvelope(&buf, payload, masterSeed, transformedKey))

	corrupted := buf.Bytes()
	corrupted[40] ^= 0xFF

	_, err := decodeEnvelope(corrupted, masterSeed, transformedKey)
	assert.NotNil(t, err)
	kdbxErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, MessageAuthenticationFailed, kdbxErr.Kind)
	assert.Equal(t, int64(0), kdbxErr.FrameIndex)
}

func TestEnvelopeDetectsTruncation(t *testing.T) {
	masterSeed := randomBytes(t, 32)
	transformedKey := randomBytes(t, 32)
	payload := randomBytes(t, 64)

	var buf bytes.Buffer
	assert.Nil(t, encodeEnvelope(&buf, payload, masterSeed, transformedKey))

	_, err := decodeEnvelope(buf.Bytes()[:10], masterSeed, transformedKey)
	assert.NotNil(t, err)
	kdbxErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, IncompleteInput, kdbxErr.Kind)
}
