package kdbx

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/vaultkeeper/kdbx4/internal/kdf"
)

// BaseMagic and VersionMagic are the two leading 4-byte little-endian
// magic values every KDBX file opens with.
const (
	BaseMagic    uint32 = 0x9AA2D903
	VersionMagic uint32 = 0xB54BFB67
)

// Cipher identifies the outer envelope's content cipher.
var (
	CipherAES256   = uuid.MustParse("31c1f2e6-bf71-4350-be58-05216afc5aff")
	CipherTwofish  = uuid.MustParse("ad68f29f-576f-4bb9-a36a-d47af965346c")
	CipherChaCha20 = uuid.MustParse("d6038a2b-8b6f-4cb5-a524-339a31dbb59a")
)

const (
	NoCompression   uint32 = 0
	GzipCompression uint32 = 1
)

// outer header field IDs
const (
	fieldEndOfHeader     byte = 0
	fieldComment         byte = 1
	fieldCipherID        byte = 2
	fieldCompression     byte = 3
	fieldMasterSeed      byte = 4
	fieldEncryptionIV    byte = 7
	fieldKdfParameters   byte = 11
	fieldPublicCustom    byte = 12
)

// Header is the outer header: signature plus the field TLV stream. RawData
// captures the exact bytes read (signature included) so the header hash
// and header HMAC can be computed over precisely what was on the wire.
type Header struct {
	MajorVersion uint16
	MinorVersion uint16

	Comment          []byte
	CipherID         uuid.UUID
	CompressionFlags uint32
	MasterSeed       []byte
	EncryptionIV     []byte
	KdfParameters    kdf.VariantParams
	PublicCustomData kdf.VariantParams

	RawData []byte
}

func readHeader(r io.Reader) (*Header, error) {
	buf := &bytes.Buffer{}
	tee := io.TeeReader(r, buf)

	var baseMagic, versionMagic uint32
	if err := binary.Read(tee, binary.LittleEndian, &baseMagic); err != nil {
		return nil, wrapErr(IncompleteInput, "reading base magic", err)
	}
	if baseMagic != BaseMagic {
		return nil, newErr(InvalidMagic, "unexpected base signature")
	}
	if err := binary.Read(tee, binary.LittleEndian, &versionMagic); err != nil {
		return nil, wrapErr(IncompleteInput, "reading version magic", err)
	}
	if versionMagic != VersionMagic {
		return nil, newErr(InvalidMagic, "unexpected version signature")
	}

	h := &Header{}
	if err := binary.Read(tee, binary.LittleEndian, &h.MinorVersion); err != nil {
		return nil, wrapErr(IncompleteInput, "reading minor version", err)
	}
	if err := binary.Read(tee, binary.LittleEndian, &h.MajorVersion); err != nil {
		return nil, wrapErr(IncompleteInput, "reading major version", err)
	}
	if h.MajorVersion != 4 {
		return nil, newErr(UnsupportedVersion, "only kdbx4 is supported")
	}

	seen := map[byte]bool{}
	for {
		var id byte
		var length uint32

		if err := binary.Read(tee, binary.LittleEndian, &id); err != nil {
			return nil, wrapErr(IncompleteInput, "reading field id", err)
		}
		if err := binary.Read(tee, binary.LittleEndian, &length); err != nil {
			return nil, wrapErr(IncompleteInput, "reading field length", err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(tee, data); err != nil {
			return nil, wrapErr(IncompleteInput, "reading field data", err)
		}

		if id == fieldEndOfHeader {
			break
		}
		if seen[id] {
			return nil, newErr(MalformedHeader, "duplicate header field")
		}
		seen[id] = true

		if err := h.setField(id, data); err != nil {
			return nil, err
		}
	}

	if h.CipherID == (uuid.UUID{}) || h.MasterSeed == nil || h.EncryptionIV == nil || h.KdfParameters == nil {
		return nil, newErr(MissingRequiredHeaderField, "cipher/seed/iv/kdf parameters required")
	}

	h.RawData = buf.Bytes()
	return h, nil
}

func (h *Header) setField(id byte, data []byte) error {
	switch id {
	case fieldComment:
		h.Comment = data
	case fieldCipherID:
		cipherID, err := uuid.FromBytes(data)
		if err != nil {
			return wrapErr(MalformedHeader, "cipher id is not a uuid", err)
		}
		h.CipherID = cipherID
	case fieldCompression:
		if len(data) != 4 {
			return newErr(MalformedHeader, "compression flags must be 4 bytes")
		}
		h.CompressionFlags = binary.LittleEndian.Uint32(data)
	case fieldMasterSeed:
		h.MasterSeed = data
	case fieldEncryptionIV:
		h.EncryptionIV = data
	case fieldKdfParameters:
		params, err := readVariantDictionary(data)
		if err != nil {
			return err
		}
		h.KdfParameters = params
	case fieldPublicCustom:
		params, err := readVariantDictionary(data)
		if err != nil {
			return err
		}
		h.PublicCustomData = params
	default:
		return newErr(MalformedHeader, "unknown header field id")
	}
	return nil
}

func (h *Header) writeTo(w io.Writer) ([]byte, error) {
	buf := &bytes.Buffer{}
	mw := io.MultiWriter(w, buf)

	binary.Write(mw, binary.LittleEndian, BaseMagic)
	binary.Write(mw, binary.LittleEndian, VersionMagic)
	binary.Write(mw, binary.LittleEndian, h.MinorVersion)
	binary.Write(mw, binary.LittleEndian, h.MajorVersion)

	if err := writeField(mw, fieldComment, h.Comment); err != nil {
		return nil, err
	}
	if err := writeField(mw, fieldCipherID, h.CipherID[:]); err != nil {
		return nil, err
	}
	compression := make([]byte, 4)
	binary.LittleEndian.PutUint32(compression, h.CompressionFlags)
	if err := writeField(mw, fieldCompression, compression); err != nil {
		return nil, err
	}
	if err := writeField(mw, fieldMasterSeed, h.MasterSeed); err != nil {
		return nil, err
	}
	if err := writeField(mw, fieldEncryptionIV, h.EncryptionIV); err != nil {
		return nil, err
	}
	kdfRaw, err := writeVariantDictionary(h.KdfParameters)
	if err != nil {
		return nil, err
	}
	if err := writeField(mw, fieldKdfParameters, kdfRaw); err != nil {
		return nil, err
	}
	if h.PublicCustomData != nil {
		customRaw, err := writeVariantDictionary(h.PublicCustomData)
		if err != nil {
			return nil, err
		}
		if err := writeField(mw, fieldPublicCustom, customRaw); err != nil {
			return nil, err
		}
	}
	if err := writeField(mw, fieldEndOfHeader, []byte{0x0D, 0x0A, 0x0D, 0x0A}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeField(w io.Writer, id byte, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, id); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readVariantDictionary(data []byte) (kdf.VariantParams, error) {
	r := bytes.NewReader(data)

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, wrapErr(InvalidVariantDictionary, "reading version", err)
	}

	params := kdf.VariantParams{}
	for {
		var kind byte
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, wrapErr(InvalidVariantDictionary, "reading entry type", err)
		}
		if kind == 0 {
			break
		}

		var nameLen int32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, wrapErr(InvalidVariantDictionary, "reading name length", err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, wrapErr(InvalidVariantDictionary, "reading name", err)
		}

		var valueLen int32
		if err := binary.Read(r, binary.LittleEndian, &valueLen); err != nil {
			return nil, wrapErr(InvalidVariantDictionary, "reading value length", err)
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, wrapErr(InvalidVariantDictionary, "reading value", err)
		}

		switch kdf.VariantKind(kind) {
		case kdf.VariantUInt32, kdf.VariantUInt64, kdf.VariantBool,
			kdf.VariantInt32, kdf.VariantInt64, kdf.VariantString, kdf.VariantBytes:
			params[string(name)] = kdf.VariantValue{Kind: kdf.VariantKind(kind), Raw: value}
		default:
			return nil, newErr(UnknownVariantType, "unrecognized variant dictionary type")
		}
	}
	return params, nil
}

func writeVariantDictionary(params kdf.VariantParams) ([]byte, error) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint16(0x0100))

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := params[name]
		binary.Write(buf, binary.LittleEndian, byte(v.Kind))
		binary.Write(buf, binary.LittleEndian, int32(len(name)))
		buf.WriteString(name)
		binary.Write(buf, binary.LittleEndian, int32(len(v.Raw)))
		buf.Write(v.Raw)
	}
	buf.WriteByte(0)
	return buf.Bytes(), nil
}

func (h *Header) kdfUUID() (uuid.UUID, error) {
	v, ok := h.KdfParameters["$UUID"]
	if !ok {
		return uuid.UUID{}, newErr(MissingRequiredHeaderField, "kdf parameters missing $UUID")
	}
	id, err := uuid.FromBytes(v.Bytes())
	if err != nil {
		return uuid.UUID{}, wrapErr(InvalidKdfParams, "kdf uuid is not valid", err)
	}
	return id, nil
}
