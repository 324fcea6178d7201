package goCred

import (
	"context"

	"github.com/MrEthical07/goCred/internal/flows"
	"github.com/MrEthical07/goCred/password"
)

// IdentifierKind selects the attribute a lookup identifier is matched against.
type IdentifierKind = flows.IdentifierKind

const (
	// IdentifierUsername matches the case-insensitive username.
	IdentifierUsername = flows.IdentifierUsername
	// IdentifierEmail matches the case-insensitive email address.
	IdentifierEmail = flows.IdentifierEmail
)

// UserRecord is the user model exchanged with a [UserProvider]. Its lifecycle is owned by
// the provider; the Engine only reads it and asks for PasswordHash rewrites.
type UserRecord struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
}

// UserProvider is the interface callers implement to connect the Engine to their user
// table. See store/redisstore and store/pgstore for ready-made implementations.
//
// GetUserByIdentifier receives an already-normalized (trimmed, lower-cased) identifier and
// must return [ErrUserNotFound] (possibly wrapped) when no user matches.
//
// UpdatePasswordHash overwrites the stored credential of userID. Concurrent calls for the
// same user may race; the last write wins and any winner is a valid canonical credential.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string, kind IdentifierKind) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// CredentialForm tags the encoding a stored credential was recognized as.
type CredentialForm = password.Form

const (
	FormUnrecognized  = password.FormUnrecognized
	FormCanonical     = password.FormCanonical
	FormLegacyLibrary = password.FormLegacyLibrary
	FormLegacyDotPair = password.FormLegacyDotPair
)

// MigrationStatus reports what rehash-on-login did after a successful authenticate.
type MigrationStatus = flows.MigrationStatus

const (
	MigrationNotNeeded = flows.MigrationNotNeeded
	MigrationApplied   = flows.MigrationApplied
	MigrationFailed    = flows.MigrationFailed
	MigrationSkipped   = flows.MigrationSkipped
)

// AuthResult is returned by [Engine.Authenticate] on success.
//
// Form is the encoding the stored credential had before this call. When Migration is
// MigrationApplied, User.PasswordHash already holds the new canonical credential. When it is
// MigrationFailed, MigrationErr wraps [ErrMigrationWriteFailed] and the login still counts.
type AuthResult struct {
	User         UserRecord
	Form         CredentialForm
	Migration    MigrationStatus
	MigrationErr error
}

// VerifyResult is returned by [Engine.Verify].
type VerifyResult = password.Outcome
