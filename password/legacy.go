package password

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// LegacyParams are the fixed derivation parameters dot-pair credentials were written with.
type LegacyParams struct {
	// Digest is "sha1", "sha256" or "sha512".
	Digest     string
	Iterations uint32
}

// DefaultLegacyParams returns the parameters used by the legacy dot-pair writer.
func DefaultLegacyParams() LegacyParams {
	return LegacyParams{Digest: "sha512", Iterations: 10000}
}

// DeriveLegacy computes the legacy dot-pair hash of plain. The salt is used as its ASCII
// text, not hex-decoded.
func DeriveLegacy(plain, salt string, keyLen int, p LegacyParams) []byte {
	digest := legacyDigestFor(p.Digest)
	if digest == nil || keyLen <= 0 || p.Iterations == 0 {
		return nil
	}
	return pbkdf2.Key([]byte(plain), []byte(salt), int(p.Iterations), keyLen, digest)
}

// EncodeDotPair builds a "<salt>.<hash>" legacy credential. It exists for fixtures and seed
// tooling; the engine never issues dot-pair credentials.
func EncodeDotPair(plain, saltHex string, keyLen int, p LegacyParams) (string, error) {
	if saltHex == "" || len(saltHex)%2 != 0 {
		return "", errors.New("legacy salt must be non-empty even-length hex")
	}
	if _, err := hex.DecodeString(saltHex); err != nil {
		return "", errors.New("legacy salt must be non-empty even-length hex")
	}
	if keyLen <= 0 || uint32(keyLen) > MaxKeyLength {
		return "", errors.New("legacy key length out of range")
	}
	key := DeriveLegacy(plain, saltHex, keyLen, p)
	if key == nil {
		return "", errors.New("legacy parameters are invalid")
	}
	return saltHex + dotPairSeparator + hex.EncodeToString(key), nil
}

// verifyDotPair tries both salt/hash orientations. Both derivations always run.
func verifyDotPair(plain string, cred Credential, p LegacyParams) bool {
	// left as salt, right as hash
	forward := DeriveLegacy(plain, cred.Left, len(cred.RightBytes), p)
	// right as salt, left as hash
	reverse := DeriveLegacy(plain, cred.Right, len(cred.LeftBytes), p)

	a := constantTimeEqualInt(forward, cred.RightBytes)
	b := constantTimeEqualInt(reverse, cred.LeftBytes)
	return a|b == 1
}

func verifyLegacyLibrary(plain string, cred Credential) bool {
	return bcrypt.CompareHashAndPassword([]byte(cred.Encoded), []byte(plain)) == nil
}
