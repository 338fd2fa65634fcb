package kdbx

import (
	"crypto/subtle"
	"encoding/binary"
	"io"

	"github.com/vaultkeeper/kdbx4/internal/kdbxcrypto"
)

// maxFrameSize is the largest plaintext chunk the envelope ever frames in
// one go: https://keepass.info/help/kb/kdbx_4.html#dataauth documents 1 MiB.
const maxFrameSize = 1024 * 1024

// frameKeyer derives the per-frame HMAC key from the base key (itself
// derived once from masterSeed/transformedKey), matching the teacher's
// BlockHMACBuilder: frame key = SHA512(index || baseKey).
type frameKeyer struct {
	baseKey [64]byte
}

func newFrameKeyer(masterSeed, transformedKey []byte) *frameKeyer {
	return &frameKeyer{
		baseKey: kdbxcrypto.SHA512(masterSeed, transformedKey, []byte{0x01}),
	}
}

func (f *frameKeyer) frameHMAC(index uint64, length uint32, data []byte) []byte {
	var idxBuf [8]byte
	binary.LittleEndian.PutUint64(idxBuf[:], index)
	frameKey := kdbxcrypto.SHA512(idxBuf[:], f.baseKey[:])

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], length)
	return kdbxcrypto.HMACSHA256(frameKey[:], idxBuf[:], lenBuf[:], data)
}

// decodeEnvelope validates and strips the chunked HMAC framing (C5),
// returning the concatenated plaintext-of-cipher payload. A mismatched
// HMAC on any frame fails closed: nothing already accumulated is returned.
func decodeEnvelope(content []byte, masterSeed, transformedKey []byte) ([]byte, error) {
	keyer := newFrameKeyer(masterSeed, transformedKey)

	var out []byte
	offset := 0
	index := uint64(0)
	for {
		if offset+32+4 > len(content) {
			return nil, newErr(IncompleteInput, "truncated envelope frame header")
		}

		var frameHMAC [32]byte
		copy(frameHMAC[:], content[offset:offset+32])
		offset += 32

		length := binary.LittleEndian.Uint32(content[offset : offset+4])
		offset += 4

		if offset+int(length) > len(content) {
			return nil, newErr(IncompleteInput, "truncated envelope frame data")
		}
		data := content[offset : offset+int(length)]
		offset += int(length)

		computed := keyer.frameHMAC(index, length, data)
		if subtle.ConstantTimeCompare(computed, frameHMAC[:]) == 0 {
			return nil, authFailure(int64(index), "frame hmac mismatch")
		}

		if length == 0 {
			break
		}
		out = append(out, data...)
		index++
	}
	return out, nil
}

// encodeEnvelope splits data into maxFrameSize chunks and frames each with
// its HMAC, terminated by a zero-length frame.
func encodeEnvelope(w io.Writer, data, masterSeed, transformedKey []byte) error {
	keyer := newFrameKeyer(masterSeed, transformedKey)

	offset := 0
	index := uint64(0)
	for {
		end := offset + maxFrameSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		length := uint32(len(chunk))

		frameHMAC := keyer.frameHMAC(index, length, chunk)
		if _, err := w.Write(frameHMAC); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, length); err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}

		offset = end
		if length == 0 {
			break
		}
		index++
	}
	return nil
}
