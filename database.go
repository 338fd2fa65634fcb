// Package kdbx implements the KDBX4 password database container format:
// an encrypted, integrity-protected, hierarchical document of groups and
// entries. Parse decodes a file into a Database; Dump re-encodes one.
package kdbx

import (
	"bytes"
	"compress/gzip"
	"crypto/rand"
	"encoding/xml"
	"io"

	"github.com/google/uuid"

	"github.com/vaultkeeper/kdbx4/internal/kdbxcrypto"
	"github.com/vaultkeeper/kdbx4/internal/kdf"
	"github.com/vaultkeeper/kdbx4/internal/secret"
	"github.com/vaultkeeper/kdbx4/logging"
)

var log = logging.GetRoot()

// Database is a fully decoded KDBX4 file: its outer header, its inner
// header, and the decrypted document tree.
type Database struct {
	Header      *Header
	InnerHeader *InnerHeader
	Document    *Document

	credentials *Credentials
}

// OpenOptions configures Parse.
type OpenOptions struct {
	SkipHeaderHashValidation bool
}

// OpenOption mutates OpenOptions, following the functional-options shape
// used throughout this codec's ambient configuration surface.
type OpenOption func(*OpenOptions)

// SkipHeaderHashValidation disables the header SHA-256/HMAC checks. Only
// useful for inspecting a corrupt file; never use this to open databases
// whose key material you trust.
func SkipHeaderHashValidation() OpenOption {
	return func(o *OpenOptions) { o.SkipHeaderHashValidation = true }
}

// Parse decodes r as a KDBX4 file using creds, returning the decrypted
// Database. It performs, in order: header TLV decode, KDF dispatch to
// derive the transformed key, header hash/HMAC validation, envelope frame
// decode and authentication, outer cipher decryption, gzip decompression
// (if flagged), inner header decode, and XML document decode with inner
// stream unmasking of Protected fields.
func Parse(r io.Reader, creds *Credentials, opts ...OpenOption) (*Database, error) {
	options := &OpenOptions{}
	for _, o := range opts {
		o(options)
	}

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	compositeHash := creds.buildCompositeKey()

	kdfUUID, err := header.kdfUUID()
	if err != nil {
		return nil, err
	}
	transformedKey, err := kdf.Dispatch(kdfUUID, header.KdfParameters, compositeHash)
	if err != nil {
		return nil, wrapErr(InvalidKdfParams, "deriving transformed key", err)
	}
	transformed := secret.New(transformedKey[:])
	defer transformed.Release()

	hashes, err := readHeaderHashes(r)
	if err != nil {
		return nil, err
	}
	if !options.SkipHeaderHashValidation {
		if err := validateHeaderSHA256(header.RawData, hashes.SHA256); err != nil {
			return nil, err
		}
		hmacKey := headerHMACKey(header.MasterSeed, transformed.Bytes())
		if err := validateHeaderHMAC(header.RawData, hmacKey, hashes.HMAC); err != nil {
			return nil, err
		}
	}

	rawBody, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapErr(IncompleteInput, "reading envelope", err)
	}
	framed, err := decodeEnvelope(rawBody, header.MasterSeed, transformed.Bytes())
	if err != nil {
		return nil, err
	}

	masterKey := deriveMasterKey(header.MasterSeed, transformed.Bytes())
	defer masterKey.Release()

	plaintext, err := decryptOuter(header.CipherID, masterKey.Bytes(), header.EncryptionIV, framed)
	if err != nil {
		return nil, err
	}

	if header.CompressionFlags == GzipCompression {
		plaintext, err = gunzip(plaintext)
		if err != nil {
			return nil, err
		}
	}

	bodyReader := bytes.NewReader(plaintext)
	innerHeader, err := readInnerHeader(bodyReader)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if err := xml.NewDecoder(bodyReader).Decode(doc); err != nil {
		return nil, wrapErr(DocumentParseError, "decoding document xml", err)
	}

	stream, err := newInnerStream(innerHeader.StreamID, innerHeader.StreamKey)
	if err != nil {
		return nil, err
	}
	doc.walkProtectedFields(func(v *Value) {
		plain := stream.Next([]byte(v.Content))
		v.Content = string(plain)
	})

	log.Debug("parsed kdbx4 database: cipher=%s kdf=%s groups=%d", header.CipherID, kdfUUID, len(doc.Root.Groups))

	return &Database{
		Header:      header,
		InnerHeader: innerHeader,
		Document:    doc,
		credentials: creds,
	}, nil
}

// DumpOptions configures Dump.
type DumpOptions struct {
	Compress bool
}

type DumpOption func(*DumpOptions)

// WithCompression toggles gzip compression of the inner payload. Defaults
// to on, matching the teacher's NewKDBX4FileHeaders default.
func WithCompression(enabled bool) DumpOption {
	return func(o *DumpOptions) { o.Compress = enabled }
}

// Dump re-encrypts and writes db to w, generating fresh random salts/IVs
// for the outer envelope so repeated dumps of the same Database never
// reuse key material.
func (db *Database) Dump(w io.Writer, opts ...DumpOption) error {
	options := &DumpOptions{Compress: true}
	for _, o := range opts {
		o(options)
	}

	if options.Compress {
		db.Header.CompressionFlags = GzipCompression
	} else {
		db.Header.CompressionFlags = NoCompression
	}

	if err := db.refreshKeyMaterial(); err != nil {
		return err
	}

	compositeHash := db.credentials.buildCompositeKey()
	kdfUUID, err := db.Header.kdfUUID()
	if err != nil {
		return err
	}
	transformedKey, err := kdf.Dispatch(kdfUUID, db.Header.KdfParameters, compositeHash)
	if err != nil {
		return wrapErr(InvalidKdfParams, "deriving transformed key", err)
	}
	transformed := secret.New(transformedKey[:])
	defer transformed.Release()

	stream, err := newInnerStream(db.InnerHeader.StreamID, db.InnerHeader.StreamKey)
	if err != nil {
		return err
	}
	db.Document.walkProtectedFields(func(v *Value) {
		masked := stream.Next([]byte(v.Content))
		v.Content = string(masked)
	})
	unmask, err := newInnerStream(db.InnerHeader.StreamID, db.InnerHeader.StreamKey)
	if err != nil {
		return err
	}
	defer db.Document.walkProtectedFields(func(v *Value) {
		v.Content = string(unmask.Next([]byte(v.Content)))
	})

	var body bytes.Buffer
	if err := db.InnerHeader.writeTo(&body); err != nil {
		return err
	}
	if err := xml.NewEncoder(&body).Encode(db.Document); err != nil {
		return err
	}

	plaintext := body.Bytes()
	if options.Compress {
		plaintext = gzipBytes(plaintext)
	}

	masterKey := deriveMasterKey(db.Header.MasterSeed, transformed.Bytes())
	defer masterKey.Release()

	ciphertext, err := encryptOuter(db.Header.CipherID, masterKey.Bytes(), db.Header.EncryptionIV, plaintext)
	if err != nil {
		return err
	}

	headerRaw, err := db.Header.writeTo(w)
	if err != nil {
		return err
	}

	headerSHA := kdbxcrypto.SHA256(headerRaw)
	hmacKey := headerHMACKey(db.Header.MasterSeed, transformed.Bytes())
	headerHMAC := kdbxcrypto.HMACSHA256(hmacKey, headerRaw)

	var hh [32]byte
	copy(hh[:], headerHMAC)
	hashes := &headerHashes{SHA256: headerSHA, HMAC: hh}
	if err := hashes.writeTo(w); err != nil {
		return err
	}

	return encodeEnvelope(w, ciphertext, db.Header.MasterSeed, transformed.Bytes())
}

// refreshKeyMaterial draws a fresh master seed, outer IV, KDF salt, and
// inner-stream key via crypto/rand, each the same length as the value it
// replaces. Dump calls this before deriving any key so that re-dumping the
// same Database never reuses key material from a prior dump.
func (db *Database) refreshKeyMaterial() error {
	seed, err := drawRandomBytes(len(db.Header.MasterSeed))
	if err != nil {
		return err
	}
	db.Header.MasterSeed = seed

	iv, err := drawRandomBytes(len(db.Header.EncryptionIV))
	if err != nil {
		return err
	}
	db.Header.EncryptionIV = iv

	if salt, ok := db.Header.KdfParameters["S"]; ok {
		fresh, err := drawRandomBytes(len(salt.Raw))
		if err != nil {
			return err
		}
		db.Header.KdfParameters["S"] = kdf.VariantValue{Kind: salt.Kind, Raw: fresh}
	}

	streamKey, err := drawRandomBytes(len(db.InnerHeader.StreamKey))
	if err != nil {
		return err
	}
	db.InnerHeader.StreamKey = streamKey

	return nil
}

func drawRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, wrapErr(IncompleteInput, "drawing random key material", err)
	}
	return b, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapErr(DecompressionError, "opening gzip stream", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapErr(DecompressionError, "reading gzip stream", err)
	}
	return out, nil
}

func gzipBytes(data []byte) []byte {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write(data)
	gw.Close()
	return buf.Bytes()
}

func decryptOuter(cipherID uuid.UUID, key, iv, data []byte) ([]byte, error) {
	switch cipherID {
	case CipherAES256:
		bs, err := kdbxcrypto.NewAESCBC(key, iv)
		if err != nil {
			return nil, wrapErr(InvalidKeyLength, "aes key", err)
		}
		out, err := bs.Decrypt(data)
		if err != nil {
			return nil, wrapErr(PaddingError, "aes padding", err)
		}
		return out, nil
	case CipherTwofish:
		bs, err := kdbxcrypto.NewTwofishCBC(key, iv)
		if err != nil {
			return nil, wrapErr(InvalidKeyLength, "twofish key", err)
		}
		out, err := bs.Decrypt(data)
		if err != nil {
			return nil, wrapErr(PaddingError, "twofish padding", err)
		}
		return out, nil
	case CipherChaCha20:
		c, err := kdbxcrypto.NewChaChaOuter(key, iv)
		if err != nil {
			return nil, wrapErr(InvalidKeyLength, "chacha20 key", err)
		}
		return c.Decrypt(data)
	default:
		return nil, newErr(UnknownCipher, "unrecognized outer cipher id")
	}
}

func encryptOuter(cipherID uuid.UUID, key, iv, data []byte) ([]byte, error) {
	switch cipherID {
	case CipherAES256:
		bs, err := kdbxcrypto.NewAESCBC(key, iv)
		if err != nil {
			return nil, wrapErr(InvalidKeyLength, "aes key", err)
		}
		return bs.Encrypt(data), nil
	case CipherTwofish:
		bs, err := kdbxcrypto.NewTwofishCBC(key, iv)
		if err != nil {
			return nil, wrapErr(InvalidKeyLength, "twofish key", err)
		}
		return bs.Encrypt(data), nil
	case CipherChaCha20:
		c, err := kdbxcrypto.NewChaChaOuter(key, iv)
		if err != nil {
			return nil, wrapErr(InvalidKeyLength, "chacha20 key", err)
		}
		return c.Encrypt(data), nil
	default:
		return nil, newErr(UnknownCipher, "unrecognized outer cipher id")
	}
}

func newInnerStream(streamID uint32, key []byte) (kdbxcrypto.InnerStream, error) {
	switch streamID {
	case InnerStreamIDNone:
		return kdbxcrypto.NoStream{}, nil
	case InnerStreamIDSalsa:
		return kdbxcrypto.NewSalsaStream(key), nil
	case InnerStreamIDChaCha:
		return kdbxcrypto.NewChaChaInnerStream(key)
	default:
		return nil, newErr(UnknownInnerCipher, "unrecognized inner stream id")
	}
}
