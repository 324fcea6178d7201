// Package password classifies, verifies and encodes stored password credentials.
//
// # Output format
//
// New credentials are encoded in the canonical five-segment form:
//
//	<algorithm>$<iterations>$<key-length>$<salt-hex>$<hash-hex>
//
// where algorithm is "pbkdf2-sha256" or "pbkdf2-sha512".
//
// # Accepted legacy forms
//
// [Hasher.Verify] also accepts bcrypt hashes ("$2a$", "$2b$", "$2y$") and dot-pair
// credentials ("<hex>.<hex>") whose salt/hash order is unknown. Dot-pairs are checked in
// both orientations on every call. Any successful match against a legacy form, or against a
// canonical credential with weaker parameters than the [Hasher] defaults, reports
// ShouldMigrate so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns classification, hashing and verification only. User lookup and
// persistence of upgraded credentials belong to the Engine and its UserProvider.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials. Callers supply plaintext and receive strings.
//   - Import any other goCred package.
//   - Log plaintext passwords, salts or hashes.
//   - Panic on malformed stored values. They classify as [FormUnrecognized].
package password
