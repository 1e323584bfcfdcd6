// Package checksum verifies downloaded archives against an expected
// cryptographic digest (spec.md §4.H). The hash function is pluggable so
// callers can substitute a different implementation without touching the
// verification logic.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// HashFunc computes a lower-case hexadecimal digest over data. The default,
// SHA256, is a pure function over crypto/sha256; no dependency in the
// retrieval pack offers a drop-in SHA-256 implementation worth substituting
// for the standard library's (see DESIGN.md).
type HashFunc func(data []byte) string

// SHA256 is the default HashFunc, computing a lower-case hex-encoded
// SHA-256 digest.
func SHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MismatchError reports that a computed digest did not match one of the
// digests it was checked against.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return "checksum: expected " + e.Expected + ", got " + e.Actual
}

// Verify computes hash(data) and compares it against expectedChecksum (from
// the caller, optional) and advertisedDigest (from the server's Digest
// header, optional). Both non-empty candidates must match the computed
// digest; a mismatch against either fails, per spec.md §4.G's "Download
// archive" rules.
func Verify(data []byte, hash HashFunc, expectedChecksum, advertisedDigest string) (string, error) {
	if hash == nil {
		hash = SHA256
	}
	actual := hash(data)
	if expectedChecksum != "" && expectedChecksum != actual {
		return actual, errors.WithStack(&MismatchError{Expected: expectedChecksum, Actual: actual})
	}
	if advertisedDigest != "" && advertisedDigest != actual {
		return actual, errors.WithStack(&MismatchError{Expected: advertisedDigest, Actual: actual})
	}
	return actual, nil
}
