package goCred

import "errors"

var (
	// ErrInvalidCredentials is returned for unknown users, wrong passwords and malformed
	// stored credentials alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by a UserProvider when no user matches. Engine callers
	// never see it; it is folded into ErrInvalidCredentials.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserLookupFailed wraps any other UserProvider lookup error.
	ErrUserLookupFailed = errors.New("user lookup failed")
	// ErrMigrationWriteFailed wraps the cause in AuthResult.MigrationErr when rehash-on-login
	// could not persist the canonical credential.
	ErrMigrationWriteFailed = errors.New("credential migration write failed")
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrMalformedCredential is the audit cause for stored values that match no known form.
	ErrMalformedCredential = errors.New("malformed stored credential")
	// ErrPasswordPolicy is returned by HashPassword for empty or oversized plaintexts.
	ErrPasswordPolicy = errors.New("password policy violation")
)
