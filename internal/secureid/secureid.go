// Package secureid implements the obfuscation boundary between internal
// content identifiers and the opaque identifiers that appear in shareable
// URLs. Raw content identifiers may reveal creation order or be guessable,
// so only the obfuscated form (a fixed-shape string of 11 decimal digits)
// ever leaves the service. The mapping is a keyed permutation: deterministic,
// injective and invertible, but only with the server-side key.
package secureid

import (
    "crypto/sha256"  // round function for the Feistel network
    "encoding/binary" // packing round inputs into bytes
    "errors"         // sentinel errors for invalid inputs
    "fmt"            // zero-padded formatting of the 11-digit output
    "strconv"        // numeric identifier parsing
)

// SecureIDLen is the exact length of a public-facing secure identifier.
const SecureIDLen = 11

// AccessTokenLen is the exact length of a bearer access token (hex chars).
const AccessTokenLen = 64

// secureIDSpace is the size of the secure identifier domain: every value in
// [0, 10^11) formats as at most 11 decimal digits.
const secureIDSpace uint64 = 100_000_000_000

// feistelSide is ceil(sqrt(secureIDSpace)); the Feistel network permutes
// [0, feistelSide^2) and cycle-walking folds the result back into the
// secure identifier space. 316228^2 = 100,000,147,984 >= 10^11.
const feistelSide uint64 = 316_228

// feistelRounds is the number of Feistel rounds. Four rounds with a keyed
// round function are enough for an obfuscation permutation; this is not an
// encryption scheme, it only has to be unguessable without the key.
const feistelRounds = 4

// ErrInvalidSecureID is returned when an input does not have the exact
// secure identifier shape. Shape failures are detected locally and must
// never trigger a lookup or network call.
var ErrInvalidSecureID = errors.New("invalid secure id")

// ErrInvalidContentID is returned when a content identifier is neither a
// legacy numeric identifier nor a 24-character hex identifier.
var ErrInvalidContentID = errors.New("invalid content id")

// ErrNotNumericID is returned by Encode/Decode when the identifier is not in
// the legacy numeric domain the keyed permutation covers. Backend-sourced
// 24-hex identifiers get their alias from the authoring-side lookup table
// instead (see repository.ContentRepo).
var ErrNotNumericID = errors.New("content id outside numeric mapping domain")

// Mapper performs the bidirectional obfuscation for legacy numeric content
// identifiers. It is pure: no I/O, no randomness, no internal state beyond
// the key.
type Mapper struct {
    key []byte
}

// NewMapper builds a Mapper from the server-side secret key. The key must
// not be empty; the zero Mapper would make the permutation trivially
// predictable.
func NewMapper(key string) (*Mapper, error) {
    if key == "" {
        return nil, errors.New("secureid: empty key")
    }
    return &Mapper{key: []byte(key)}, nil
}

// IsValidSecureID reports whether s has the exact public identifier shape:
// exactly 11 decimal digits. It is the fast-reject guard used everywhere a
// mapping or lookup would otherwise be attempted.
func IsValidSecureID(s string) bool {
    if len(s) != SecureIDLen {
        return false
    }
    for i := 0; i < len(s); i++ {
        if s[i] < '0' || s[i] > '9' {
            return false
        }
    }
    return true
}

// IsValidContentID reports whether s is an acceptable internal content
// identifier: either a legacy numeric identifier (1 to 11 digits) or a
// 24-character lowercase hex identifier.
func IsValidContentID(s string) bool {
    if len(s) == 0 {
        return false
    }
    if len(s) == 24 {
        return isLowerHex(s)
    }
    if len(s) > SecureIDLen {
        return false
    }
    // Legacy numeric identifiers carry no leading zeros; allowing them would
    // break the round-trip guarantee ("007" and "7" would alias).
    if len(s) > 1 && s[0] == '0' {
        return false
    }
    for i := 0; i < len(s); i++ {
        if s[i] < '0' || s[i] > '9' {
            return false
        }
    }
    return true
}

// IsValidAccessToken reports whether s has the exact bearer token shape:
// exactly 64 lowercase hexadecimal characters. A string failing this check
// must never be sent to the verification authority.
func IsValidAccessToken(s string) bool {
    return len(s) == AccessTokenLen && isLowerHex(s)
}

func isLowerHex(s string) bool {
    for i := 0; i < len(s); i++ {
        c := s[i]
        if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
            return false
        }
    }
    return true
}

// Encode maps a legacy numeric content identifier to its 11-digit secure
// alias. The mapping is deterministic and injective over the whole numeric
// domain, so distinct identifiers never collide. Identifiers outside the
// numeric domain (the 24-hex backend form) return ErrNotNumericID.
func (m *Mapper) Encode(contentID string) (string, error) {
    if !IsValidContentID(contentID) {
        return "", ErrInvalidContentID
    }
    if len(contentID) == 24 {
        return "", ErrNotNumericID
    }
    n, err := strconv.ParseUint(contentID, 10, 64)
    if err != nil || n >= secureIDSpace {
        return "", ErrNotNumericID
    }
    // Cycle-walk: the Feistel permutation covers [0, feistelSide^2), which
    // is slightly larger than the output space. Repeating the permutation
    // until the value lands inside [0, 10^11) preserves bijectivity.
    x := m.permute(n)
    for x >= secureIDSpace {
        x = m.permute(x)
    }
    return fmt.Sprintf("%011d", x), nil
}

// Alias returns the public alias for any well-formed content identifier,
// used at authoring time when a content row is written. Numeric identifiers
// go through the invertible permutation directly. 24-hex backend identifiers
// are first folded into the numeric domain with a keyed hash and then
// permuted so every alias looks uniform; the fold is not invertible, which
// is why hex-sourced aliases are resolved through the authoring-side lookup
// column rather than Decode.
func (m *Mapper) Alias(contentID string) (string, error) {
    if !IsValidContentID(contentID) {
        return "", ErrInvalidContentID
    }
    if len(contentID) != 24 {
        return m.Encode(contentID)
    }
    h := sha256.New()
    h.Write(m.key)
    h.Write([]byte(contentID))
    sum := h.Sum(nil)
    n := binary.BigEndian.Uint64(sum[:8]) % secureIDSpace
    x := m.permute(n)
    for x >= secureIDSpace {
        x = m.permute(x)
    }
    return fmt.Sprintf("%011d", x), nil
}

// Decode is the exact inverse of Encode. It shape-rejects the input before
// doing any arithmetic and returns the original numeric content identifier
// without leading zeros.
func (m *Mapper) Decode(secureID string) (string, error) {
    if !IsValidSecureID(secureID) {
        return "", ErrInvalidSecureID
    }
    n, err := strconv.ParseUint(secureID, 10, 64)
    if err != nil || n >= secureIDSpace {
        return "", ErrInvalidSecureID
    }
    x := m.unpermute(n)
    for x >= secureIDSpace {
        x = m.unpermute(x)
    }
    return strconv.FormatUint(x, 10), nil
}

// permute runs the forward Feistel network over [0, feistelSide^2).
func (m *Mapper) permute(x uint64) uint64 {
    a, b := x/feistelSide, x%feistelSide
    for r := 0; r < feistelRounds; r++ {
        a, b = b, (a+m.round(r, b))%feistelSide
    }
    return a*feistelSide + b
}

// unpermute runs the rounds in reverse, undoing permute exactly.
func (m *Mapper) unpermute(x uint64) uint64 {
    a, b := x/feistelSide, x%feistelSide
    for r := feistelRounds - 1; r >= 0; r-- {
        a, b = (b+feistelSide-m.round(r, a)%feistelSide)%feistelSide, a
    }
    return a*feistelSide + b
}

// round derives the keyed round value for one Feistel half. SHA-256 over
// (key, round index, half value) keeps the permutation stable for a given
// key and unpredictable without it.
func (m *Mapper) round(r int, v uint64) uint64 {
    var buf [12]byte
    binary.BigEndian.PutUint32(buf[0:4], uint32(r))
    binary.BigEndian.PutUint64(buf[4:12], v)
    h := sha256.New()
    h.Write(m.key)
    h.Write(buf[:])
    sum := h.Sum(nil)
    return binary.BigEndian.Uint64(sum[:8]) % feistelSide
}
