// Package goCred verifies stored password credentials and migrates legacy or weak ones to a
// single canonical PBKDF2 encoding as a side effect of successful logins.
//
// Three stored forms are accepted: the canonical five-segment PBKDF2 string, bcrypt hashes,
// and ambiguous "<hex>.<hex>" dot-pair credentials whose salt/hash order is unknown. Every
// successful login against anything but a current canonical credential rewrites it through
// the caller's [UserProvider], so no offline migration step is needed.
//
// Engine methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goCred is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (AuthResult, MetricsSnapshot, AuditEvent). Flow orchestration, derivation bounding,
// audit dispatch and metric storage live under internal/ and are never exported.
// Credential parsing and hashing live in the password package.
//
// # What this package must NOT do
//
//   - Own user storage. Lookup and persistence go through UserProvider.
//   - Log or audit plaintext passwords or stored credential strings.
//   - Distinguish unknown users from wrong passwords in its returned errors.
//   - Import any sub-package that re-imports goCred (no import cycles).
//
// # Performance contract
//
// Authenticate costs one key derivation per call (two for a dot-pair credential, plus one
// for the rewrite when a migration is due), bounded by Security.MaxConcurrentDerivations,
// and one provider round-trip (two when an email fallback lookup is needed, plus the write).
package goCred
