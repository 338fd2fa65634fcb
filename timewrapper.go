package kdbx

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"time"
)

// naiveEpochOffset is time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix(): the
// KDBX4 epoch for the base64-encoded, seconds-since-year-1 timestamps used
// throughout the document tree (Times, DeletionTime, the *Changed fields).
const naiveEpochOffset int64 = -62135596800

// Timestamp wraps time.Time with KDBX4's base64(little-endian int64
// seconds-since-year-1) text encoding. KDBX3.1's RFC3339 encoding is not
// supported since this codec targets KDBX4 exclusively.
type Timestamp struct {
	Time time.Time
}

// Now returns a Timestamp for the current instant in UTC.
func Now() Timestamp {
	return Timestamp{Time: time.Now().In(time.UTC)}
}

func (t Timestamp) MarshalText() ([]byte, error) {
	seconds := t.Time.Unix() - naiveEpochOffset

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(seconds))

	out := make([]byte, base64.StdEncoding.EncodedLen(len(buf)))
	base64.StdEncoding.Encode(out, buf)
	return out, nil
}

func (t *Timestamp) UnmarshalText(data []byte) error {
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(decoded, data)
	if err != nil {
		return wrapErr(InvalidValueEncoding, "timestamp is not valid base64", err)
	}
	decoded = decoded[:n]

	var seconds int64
	if err := binary.Read(bytes.NewReader(decoded), binary.LittleEndian, &seconds); err != nil {
		return wrapErr(InvalidValueEncoding, "timestamp is not 8 bytes", err)
	}

	t.Time = time.Unix(naiveEpochOffset+seconds, 0).In(time.UTC)
	return nil
}
