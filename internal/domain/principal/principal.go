package principal

import (
	"bytes"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"strings"
)

// MaxLength is the maximum number of raw bytes in a principal.
const MaxLength = 29

// Principal type tags (last byte of the raw form).
const (
	tagSelfAuthenticating = 0x02
	tagAnonymous          = 0x04
)

// Domain errors
var (
	ErrEmptyText   = errors.New("principal text cannot be empty")
	ErrBadEncoding = errors.New("principal text is not valid base32")
	ErrChecksum    = errors.New("principal checksum mismatch")
	ErrTooLong     = errors.New("principal exceeds 29 bytes")
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is an opaque caller identifier issued by the identity provider.
// The zero value is the management principal (no bytes).
type Principal struct {
	raw string
}

// FromBytes wraps raw principal bytes.
// PRE: len(b) <= MaxLength
// POST: Returns a principal holding a copy of b
func FromBytes(b []byte) (Principal, error) {
	if len(b) > MaxLength {
		return Principal{}, ErrTooLong
	}
	return Principal{raw: string(b)}, nil
}

// Anonymous returns the principal used by callers without an identity.
func Anonymous() Principal {
	return Principal{raw: string([]byte{tagAnonymous})}
}

// SelfAuthenticating derives the principal owned by a DER-encoded public key.
// PRE: derPublicKey is non-empty
// POST: Returns SHA-224(derPublicKey) followed by the self-authenticating tag
func SelfAuthenticating(derPublicKey []byte) Principal {
	sum := sha256.Sum224(derPublicKey)
	raw := make([]byte, 0, len(sum)+1)
	raw = append(raw, sum[:]...)
	raw = append(raw, tagSelfAuthenticating)
	return Principal{raw: string(raw)}
}

// FromText parses the dashed, checksummed textual form.
// PRE: text is the output of String()
// POST: Returns the principal or an error when the checksum does not match
func FromText(text string) (Principal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Principal{}, ErrEmptyText
	}
	compact := strings.ToUpper(strings.ReplaceAll(text, "-", ""))
	decoded, err := encoding.DecodeString(compact)
	if err != nil || len(decoded) < 4 {
		return Principal{}, ErrBadEncoding
	}
	raw := decoded[4:]
	if len(raw) > MaxLength {
		return Principal{}, ErrTooLong
	}
	if binary.BigEndian.Uint32(decoded[:4]) != crc32.ChecksumIEEE(raw) {
		return Principal{}, ErrChecksum
	}
	p := Principal{raw: string(raw)}
	// Reject non-canonical spellings (bad dash grouping, etc.)
	if p.String() != strings.ToLower(text) {
		return Principal{}, ErrBadEncoding
	}
	return p, nil
}

// MustFromText is FromText for constants and tests.
func MustFromText(text string) Principal {
	p, err := FromText(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the raw bytes.
func (p Principal) Bytes() []byte {
	return []byte(p.raw)
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return p.raw == string([]byte{tagAnonymous})
}

// Equal reports whether both principals hold the same bytes.
func (p Principal) Equal(other Principal) bool {
	return bytes.Equal([]byte(p.raw), []byte(other.raw))
}

// String renders the textual form: base32(crc32 ++ bytes), lower case, dash every 5 chars.
// INVARIANT: FromText(p.String()) returns p
func (p Principal) String() string {
	buf := make([]byte, 4, 4+len(p.raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE([]byte(p.raw)))
	buf = append(buf, p.raw...)
	enc := strings.ToLower(encoding.EncodeToString(buf))

	var sb strings.Builder
	for i, r := range enc {
		if i > 0 && i%5 == 0 {
			sb.WriteByte('-')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := FromText(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
