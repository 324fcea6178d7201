// Package redisstore provides a Redis-backed goCred.UserProvider.
//
// Each user is one hash keyed by a UUID, with string index keys mapping the lower-cased
// username and email to that ID. Credential rewrites run as a Lua script that only touches
// an existing user hash, so a migration racing a user deletion cannot resurrect a partial
// record.
//
// # Architecture boundaries
//
// This package owns the key layout and Redis commands. It does NOT classify, verify or hash
// credentials; it stores whatever string the Engine hands it.
//
// # What this package must NOT do
//
//   - Interpret or log password_hash values.
//   - Apply authentication policy.
package redisstore
