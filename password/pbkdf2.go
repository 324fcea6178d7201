package password

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations  uint32 = 1000
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	legacyMinIters uint32 = 1

	// DefaultMaxPasswordBytes is applied when Config.MaxPasswordBytes is zero.
	DefaultMaxPasswordBytes = 1024
)

var (
	// ErrEmptyPassword is returned by Hash for an empty plaintext.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrPasswordTooLong is returned by Hash when the plaintext exceeds MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// Config holds the current canonical parameters and the fixed legacy parameters.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Algorithm        string
	Iterations       uint32
	KeyLength        uint32
	SaltLength       uint32
	MaxPasswordBytes int

	Legacy LegacyParams

	// LegacyLibraryEnabled accepts bcrypt credentials. When false they verify as unrecognized.
	LegacyLibraryEnabled bool
}

// Outcome is the result of [Hasher.Verify].
//
// ShouldMigrate is derived from the classification alone. Callers must only act on it
// when Matched is true.
type Outcome struct {
	Matched       bool
	ShouldMigrate bool
	Form          Form
}

// Hasher encodes canonical credentials and verifies every supported form.
//
// Hasher is immutable after NewHasher and safe for concurrent use.
type Hasher struct {
	config Config
	digest func() hash.Hash
}

// NewHasher validates cfg and returns a Hasher bound to it.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxPasswordBytes <= 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}

	return &Hasher{
		config: cfg,
		digest: digestFor(cfg.Algorithm),
	}, nil
}

// Config returns a copy of the parameters the Hasher was built with.
func (h *Hasher) Config() Config {
	return h.config
}

// Hash derives a canonical credential for plain with a fresh random salt. Two calls with
// the same plaintext never return the same string.
func (h *Hasher) Hash(plain string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if len(plain) > h.config.MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	return h.derive([]byte(plain))
}

// Dummy returns a canonical credential for a random secret nobody knows, built with the
// current parameters. The secret bypasses the plaintext length policy, so any valid
// Config yields one.
func (h *Hasher) Dummy() (string, error) {
	secret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return "", err
	}
	return h.derive(secret)
}

func (h *Hasher) derive(secret []byte) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key(
		secret,
		salt,
		int(h.config.Iterations),
		int(h.config.KeyLength),
		h.digest,
	)

	return encodeCanonical(h.config.Algorithm, h.config.Iterations, salt, key), nil
}

// Verify reports whether plain matches stored and whether stored should be re-encoded.
// Malformed stored values never match and never panic.
func (h *Hasher) Verify(plain string, stored string) Outcome {
	cred := Classify(stored)
	if cred.Form == FormLegacyLibrary && !h.config.LegacyLibraryEnabled {
		cred = Credential{Form: FormUnrecognized}
	}

	out := Outcome{
		Form:          cred.Form,
		ShouldMigrate: h.needsMigration(cred),
	}
	if len(plain) > h.config.MaxPasswordBytes {
		return out
	}

	switch cred.Form {
	case FormCanonical:
		out.Matched = h.verifyCanonical(plain, cred)
	case FormLegacyLibrary:
		out.Matched = verifyLegacyLibrary(plain, cred)
	case FormLegacyDotPair:
		out.Matched = verifyDotPair(plain, cred, h.config.Legacy)
	}
	return out
}

// NeedsUpgrade reports whether stored is anything other than a canonical credential
// with current-or-stronger parameters.
func (h *Hasher) NeedsUpgrade(stored string) bool {
	cred := Classify(stored)
	if cred.Form == FormLegacyLibrary && !h.config.LegacyLibraryEnabled {
		return false
	}
	return h.needsMigration(cred)
}

func (h *Hasher) needsMigration(cred Credential) bool {
	switch cred.Form {
	case FormCanonical:
		if cred.Algorithm != h.config.Algorithm {
			return true
		}
		if cred.Iterations < h.config.Iterations {
			return true
		}
		if cred.KeyLength != h.config.KeyLength {
			return true
		}
		return uint32(len(cred.Salt)) < h.config.SaltLength
	case FormLegacyLibrary, FormLegacyDotPair:
		return true
	default:
		return false
	}
}

func (h *Hasher) verifyCanonical(plain string, cred Credential) bool {
	digest := digestFor(cred.Algorithm)
	if digest == nil {
		return false
	}
	computed := pbkdf2.Key(
		[]byte(plain),
		cred.Salt,
		int(cred.Iterations),
		int(cred.KeyLength),
		digest,
	)
	return constantTimeEqual(computed, cred.Hash)
}

func encodeCanonical(algorithm string, iterations uint32, salt, key []byte) string {
	var b strings.Builder
	b.Grow(len(algorithm) + 24 + 2*len(salt) + 2*len(key))
	b.WriteString(algorithm)
	b.WriteString(canonicalSeparator)
	b.WriteString(strconv.FormatUint(uint64(iterations), 10))
	b.WriteString(canonicalSeparator)
	b.WriteString(strconv.Itoa(len(key)))
	b.WriteString(canonicalSeparator)
	b.WriteString(hex.EncodeToString(salt))
	b.WriteString(canonicalSeparator)
	b.WriteString(hex.EncodeToString(key))
	return b.String()
}

func digestFor(algorithm string) func() hash.Hash {
	switch algorithm {
	case AlgorithmPBKDF2SHA256:
		return sha256.New
	case AlgorithmPBKDF2SHA512:
		return sha512.New
	default:
		return nil
	}
}

func legacyDigestFor(name string) func() hash.Hash {
	switch strings.ToLower(name) {
	case "sha1":
		return sha1.New
	case "sha256":
		return sha256.New
	case "sha512":
		return sha512.New
	default:
		return nil
	}
}

func validateConfig(cfg Config) error {
	if digestFor(cfg.Algorithm) == nil {
		return errors.New("password algorithm must be pbkdf2-sha256 or pbkdf2-sha512")
	}
	if cfg.Iterations < minIterations {
		return errors.New("password iterations must be >= 1000")
	}
	if cfg.Iterations > MaxIterations {
		return errors.New("password iterations must be <= 10000000")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}
	if cfg.KeyLength > MaxKeyLength {
		return errors.New("password key length must be <= 512")
	}
	if cfg.MaxPasswordBytes < 0 {
		return errors.New("password max bytes must be >= 0")
	}
	if legacyDigestFor(cfg.Legacy.Digest) == nil {
		return errors.New("legacy digest must be sha1, sha256 or sha512")
	}
	if cfg.Legacy.Iterations < legacyMinIters || cfg.Legacy.Iterations > MaxIterations {
		return errors.New("legacy iterations must be between 1 and 10000000")
	}

	return nil
}
