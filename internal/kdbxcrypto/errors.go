package kdbxcrypto

import "errors"

// ErrPadding is returned when PKCS#7 padding fails validation on decrypt.
var ErrPadding = errors.New("kdbxcrypto: invalid PKCS#7 padding")

// ErrInvalidKeyLength is returned when a cipher is constructed with a key
// of the wrong length.
var ErrInvalidKeyLength = errors.New("kdbxcrypto: invalid key length")
