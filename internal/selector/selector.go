// Package selector derives the 4-byte dispatch selectors of constructors,
// messages and chain-extension functions.
//
// A selector is either given explicitly by an annotation or computed as the
// first four bytes of a digest over a canonical signature:
//
//	name(T1,T2)
//
// The package imports nothing internal.
package selector

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/unicode/norm"
)

// Selector is a 4-byte dispatch identifier.
type Selector [4]byte

// FromUint32 encodes v big-endian.
func FromUint32(v uint32) Selector {
	return Selector{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Uint32 decodes the selector big-endian.
func (s Selector) Uint32() uint32 {
	return uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])
}

// Hex renders the selector as fixed-width lowercase hex with a 0x prefix.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

func (s Selector) String() string {
	return s.Hex()
}

// MarshalJSON encodes the selector as its hex string.
func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hex())
}

// UnmarshalJSON decodes a hex string produced by MarshalJSON.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse reads an explicit selector annotation value. Accepted forms are a
// 0x-prefixed hex literal of at most 8 digits (0xCAFEBABE) and a decimal
// integer that fits in 32 bits (1234). Underscore digit separators are
// allowed in both.
func Parse(text string) (Selector, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if s == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		if rest == "" || len(rest) > 8 {
			return Selector{}, fmt.Errorf("invalid selector %q: expected 0x followed by 1 to 8 hex digits", text)
		}
		v, err := strconv.ParseUint(rest, 16, 32)
		if err != nil {
			return Selector{}, fmt.Errorf("invalid selector %q: %w", text, err)
		}
		return FromUint32(uint32(v)), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: expected hex or 32-bit integer", text)
	}
	return FromUint32(uint32(v)), nil
}

// Hash names the digest used for computed selectors.
type Hash string

const (
	// Blake2b256 is the default digest.
	Blake2b256 Hash = "blake2b"
	// Keccak256 is the legacy Keccak-256 digest used by EVM-style ABIs.
	Keccak256 Hash = "keccak256"
)

// ParseHash validates a configured digest name. Empty selects Blake2b256.
func ParseHash(name string) (Hash, error) {
	switch h := Hash(strings.ToLower(strings.TrimSpace(name))); h {
	case "":
		return Blake2b256, nil
	case Blake2b256, Keccak256:
		return h, nil
	default:
		return "", fmt.Errorf("unknown selector hash %q: must be %q or %q", name, Blake2b256, Keccak256)
	}
}

// Sum returns the 32-byte digest of data.
func (h Hash) Sum(data []byte) []byte {
	switch h {
	case Keccak256:
		d := sha3.NewLegacyKeccak256()
		_, _ = d.Write(data)
		return d.Sum(nil)
	default:
		sum := blake2b.Sum256(data)
		return sum[:]
	}
}

// Compute returns the first four bytes of the digest of signature.
func (h Hash) Compute(signature string) Selector {
	var s Selector
	copy(s[:], h.Sum([]byte(signature)))
	return s
}

// Signature renders the canonical signature `name(T1,T2)`.
//
// The name is NFC-normalised and trimmed; all whitespace is removed from
// parameter types so that source formatting never changes a selector.
// Parameter order is significant.
func Signature(name string, paramTypes []string) string {
	var b strings.Builder
	b.WriteString(norm.NFC.String(strings.TrimSpace(name)))
	b.WriteByte('(')
	for i, t := range paramTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(stripSpace(norm.NFC.String(t)))
	}
	b.WriteByte(')')
	return b.String()
}

// QualifiedName joins a namespace path and member name with "::", skipping
// empty segments.
func QualifiedName(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "::")
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ExtensionSelector packs a chain-extension id and function id into the
// shared selector space: extension<<16 | function, big-endian.
func ExtensionSelector(extension, function uint16) Selector {
	return FromUint32(uint32(extension)<<16 | uint32(function))
}
