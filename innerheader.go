package kdbx

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	InnerStreamIDNone   uint32 = 0
	InnerStreamIDSalsa  uint32 = 2
	InnerStreamIDChaCha uint32 = 3
)

const (
	innerFieldTerminator byte = 0
	innerFieldStreamID   byte = 1
	innerFieldStreamKey  byte = 2
	innerFieldBinary     byte = 3
)

// binary attachment flag bits, packed into the single flag byte that
// precedes each binary's content in the inner header.
const (
	binaryFlagProtected  byte = 0x01
	binaryFlagCompressed byte = 0x02
)

// BinaryAttachment is a raw binary payload stored in the inner header.
// Entries reference these by ordinal via BinaryRef. Content always holds
// the decompressed payload; Compressed only records whether the wire copy
// should be gzip-compressed, independent of the outer envelope's own
// CompressionFlags.
type BinaryAttachment struct {
	ID              int
	MemoryProtected bool
	Compressed      bool
	Content         []byte
}

// InnerHeader carries the inner stream protection settings and the
// database's binary attachment pool (C7).
type InnerHeader struct {
	StreamID  uint32
	StreamKey []byte
	Binaries  []BinaryAttachment
}

func readInnerHeader(r io.Reader) (*InnerHeader, error) {
	ih := &InnerHeader{}
	nextID := 0
	for {
		var id byte
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, wrapErr(IncompleteInput, "reading inner header field id", err)
		}
		var length int32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, wrapErr(IncompleteInput, "reading inner header field length", err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, wrapErr(IncompleteInput, "reading inner header field data", err)
		}

		switch id {
		case innerFieldTerminator:
			return ih, nil
		case innerFieldStreamID:
			if len(data) != 4 {
				return nil, newErr(MalformedHeader, "inner stream id must be 4 bytes")
			}
			ih.StreamID = binary.LittleEndian.Uint32(data)
		case innerFieldStreamKey:
			ih.StreamKey = data
		case innerFieldBinary:
			if len(data) < 1 {
				return nil, newErr(MalformedHeader, "binary attachment missing protection flag")
			}
			flags := data[0]
			content := data[1:]
			if flags&binaryFlagCompressed != 0 {
				decompressed, err := gunzip(content)
				if err != nil {
					return nil, err
				}
				content = decompressed
			}
			ih.Binaries = append(ih.Binaries, BinaryAttachment{
				ID:              nextID,
				MemoryProtected: flags&binaryFlagProtected != 0,
				Compressed:      flags&binaryFlagCompressed != 0,
				Content:         content,
			})
			nextID++
		default:
			return nil, newErr(MalformedHeader, "unknown inner header field id")
		}
	}
}

func (ih *InnerHeader) writeTo(w io.Writer) error {
	streamID := make([]byte, 4)
	binary.LittleEndian.PutUint32(streamID, ih.StreamID)
	if err := writeInnerField(w, innerFieldStreamID, streamID); err != nil {
		return err
	}
	if err := writeInnerField(w, innerFieldStreamKey, ih.StreamKey); err != nil {
		return err
	}
	for _, bin := range ih.Binaries {
		buf := &bytes.Buffer{}
		var flags byte
		if bin.MemoryProtected {
			flags |= binaryFlagProtected
		}
		content := bin.Content
		if bin.Compressed {
			flags |= binaryFlagCompressed
			content = gzipBytes(content)
		}
		buf.WriteByte(flags)
		buf.Write(content)
		if err := writeInnerField(w, innerFieldBinary, buf.Bytes()); err != nil {
			return err
		}
	}
	return writeInnerField(w, innerFieldTerminator, nil)
}

func writeInnerField(w io.Writer, id byte, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, id); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func findBinary(binaries []BinaryAttachment, id int) *BinaryAttachment {
	for i := range binaries {
		if binaries[i].ID == id {
			return &binaries[i]
		}
	}
	return nil
}
