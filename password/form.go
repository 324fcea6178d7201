package password

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// Form tags the encoding a stored credential was recognized as.
type Form uint8

const (
	// FormUnrecognized is any value matching none of the supported encodings.
	FormUnrecognized Form = iota
	// FormCanonical is the five-segment PBKDF2 encoding issued by [Hasher.Hash].
	FormCanonical
	// FormLegacyLibrary is a bcrypt hash.
	FormLegacyLibrary
	// FormLegacyDotPair is two hex blobs joined by '.', salt/hash order unknown.
	FormLegacyDotPair
)

func (f Form) String() string {
	switch f {
	case FormCanonical:
		return "canonical"
	case FormLegacyLibrary:
		return "legacy_library"
	case FormLegacyDotPair:
		return "legacy_dot_pair"
	default:
		return "unrecognized"
	}
}

const (
	// AlgorithmPBKDF2SHA256 identifies PBKDF2-HMAC-SHA256 canonical credentials.
	AlgorithmPBKDF2SHA256 = "pbkdf2-sha256"
	// AlgorithmPBKDF2SHA512 identifies PBKDF2-HMAC-SHA512 canonical credentials.
	AlgorithmPBKDF2SHA512 = "pbkdf2-sha512"

	// MaxIterations bounds the work a stored credential can demand.
	MaxIterations uint32 = 10_000_000
	// MaxKeyLength bounds the derived key length of a stored credential.
	MaxKeyLength uint32 = 512

	canonicalSeparator = "$"
	canonicalSegments  = 5
	dotPairSeparator   = "."
)

var bcryptPattern = regexp.MustCompile(`^\$2[aby]\$(0[4-9]|[12][0-9]|3[01])\$[./A-Za-z0-9]{53}$`)

// Credential is the typed view of a stored credential string. Only the fields relevant
// to Form are populated.
type Credential struct {
	Form Form

	// canonical
	Algorithm  string
	Iterations uint32
	KeyLength  uint32
	Salt       []byte
	Hash       []byte

	// legacy library
	Encoded string

	// legacy dot-pair, raw segment text and decoded bytes in stored order
	Left       string
	Right      string
	LeftBytes  []byte
	RightBytes []byte
}

// Classify parses stored into a [Credential]. It never panics and never returns an
// error: anything it cannot parse is [FormUnrecognized].
func Classify(stored string) Credential {
	if c, ok := parseCanonical(stored); ok {
		return c
	}
	if bcryptPattern.MatchString(stored) {
		return Credential{Form: FormLegacyLibrary, Encoded: stored}
	}
	if c, ok := parseDotPair(stored); ok {
		return c
	}
	return Credential{Form: FormUnrecognized}
}

func parseCanonical(stored string) (Credential, bool) {
	parts := strings.Split(stored, canonicalSeparator)
	if len(parts) != canonicalSegments {
		return Credential{}, false
	}
	if digestFor(parts[0]) == nil {
		return Credential{}, false
	}

	iterations, ok := parseBoundedUint(parts[1], MaxIterations)
	if !ok {
		return Credential{}, false
	}
	keyLength, ok := parseBoundedUint(parts[2], MaxKeyLength)
	if !ok {
		return Credential{}, false
	}

	salt, err := hex.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return Credential{}, false
	}
	hash, err := hex.DecodeString(parts[4])
	if err != nil || uint32(len(hash)) != keyLength {
		return Credential{}, false
	}

	return Credential{
		Form:       FormCanonical,
		Algorithm:  parts[0],
		Iterations: iterations,
		KeyLength:  keyLength,
		Salt:       salt,
		Hash:       hash,
	}, true
}

// parseBoundedUint accepts plain decimal digits in [1, max].
func parseBoundedUint(s string, max uint32) (uint32, bool) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 || v > uint64(max) {
		return 0, false
	}
	return uint32(v), true
}

func parseDotPair(stored string) (Credential, bool) {
	if strings.Contains(stored, canonicalSeparator) || strings.Count(stored, dotPairSeparator) != 1 {
		return Credential{}, false
	}
	left, right, _ := strings.Cut(stored, dotPairSeparator)
	if left == "" || right == "" {
		return Credential{}, false
	}

	leftBytes, err := hex.DecodeString(left)
	if err != nil {
		return Credential{}, false
	}
	rightBytes, err := hex.DecodeString(right)
	if err != nil {
		return Credential{}, false
	}
	if uint32(len(leftBytes)) > MaxKeyLength || uint32(len(rightBytes)) > MaxKeyLength {
		return Credential{}, false
	}

	return Credential{
		Form:       FormLegacyDotPair,
		Left:       left,
		Right:      right,
		LeftBytes:  leftBytes,
		RightBytes: rightBytes,
	}, true
}
