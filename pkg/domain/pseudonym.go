package domain

import (
	"crypto/rand"
	"strings"

	dErrors "medvault/pkg/domain-errors"
)

// Pseudonym is the opaque token linking one identity record to at most one
// clinical record. It carries no PII or PHI and is minted from a CSPRNG, so
// it cannot be derived from (or reversed to) the identity it is paired with.
//
// Invariant: assigned once at patient creation and never recomputed. Updates
// to either record must leave it untouched.
//
// Usage: construct via Mint when creating a patient, or via ParsePseudonym at
// trust boundaries; direct casting bypasses validation.
type Pseudonym string

const (
	pseudonymPrefix = "PSN-"
	pseudonymLen    = 12
)

// pseudonymAlphabet is Crockford base32: no vowels that spell words, no
// ambiguous I/L/O/U.
const pseudonymAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Mint generates a fresh pseudonym. Collisions are possible in principle and
// are handled by the caller via the identity store's unique index plus retry.
func Mint() (Pseudonym, error) {
	buf := make([]byte, pseudonymLen)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "mint pseudonym")
	}
	var b strings.Builder
	b.Grow(len(pseudonymPrefix) + pseudonymLen)
	b.WriteString(pseudonymPrefix)
	for _, c := range buf {
		b.WriteByte(pseudonymAlphabet[int(c)%len(pseudonymAlphabet)])
	}
	return Pseudonym(b.String()), nil
}

// ParsePseudonym constructs a Pseudonym from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or does not carry
// the expected prefix; no other errors are expected.
func ParsePseudonym(s string) (Pseudonym, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "pseudonym cannot be empty")
	}
	if !strings.HasPrefix(s, pseudonymPrefix) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "pseudonym must start with PSN-")
	}
	return Pseudonym(s), nil
}

// IsValid reports whether the pseudonym has the expected shape.
func (p Pseudonym) IsValid() bool {
	return strings.HasPrefix(string(p), pseudonymPrefix) && len(p) > len(pseudonymPrefix)
}

// String returns the string representation of the pseudonym.
func (p Pseudonym) String() string {
	return string(p)
}
