package kdf

import "errors"

// ErrInvalidParams is returned when a KDF's cost parameters are zero or
// otherwise structurally invalid (missing memory/iterations/parallelism).
var ErrInvalidParams = errors.New("kdf: invalid parameters")

// ErrUnknownKDF is returned when a KdfParameters dictionary names a UUID
// none of the supported KDFs recognize.
var ErrUnknownKDF = errors.New("kdf: unknown key derivation function")
