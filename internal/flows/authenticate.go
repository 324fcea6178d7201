package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/goCred/password"
)

// IdentifierKind selects which user attribute an identifier is matched against.
type IdentifierKind uint8

const (
	IdentifierUsername IdentifierKind = iota
	IdentifierEmail
)

func (k IdentifierKind) String() string {
	if k == IdentifierEmail {
		return "email"
	}
	return "username"
}

// MigrationStatus reports what happened to the stored credential after a successful
// authenticate.
type MigrationStatus uint8

const (
	// MigrationNotNeeded means the credential is already canonical with current parameters.
	MigrationNotNeeded MigrationStatus = iota
	// MigrationApplied means a canonical credential was written through the provider.
	MigrationApplied
	// MigrationFailed means hashing or the provider write failed. The login still succeeded.
	MigrationFailed
	// MigrationSkipped means migration was due but not attempted (upgrade disabled or ctx done).
	MigrationSkipped
)

func (s MigrationStatus) String() string {
	switch s {
	case MigrationApplied:
		return "applied"
	case MigrationFailed:
		return "failed"
	case MigrationSkipped:
		return "skipped"
	default:
		return "not_needed"
	}
}

// AuthenticateUserRecord is the flow-local user model.
type AuthenticateUserRecord struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
}

// AuthenticateResult is the flow-local authenticate response shape.
type AuthenticateResult struct {
	User         AuthenticateUserRecord
	Form         password.Form
	Migration    MigrationStatus
	MigrationErr error
}

// AuthenticateMetrics carries metric IDs needed by the authenticate flow.
type AuthenticateMetrics struct {
	AuthSuccess         int
	AuthFailure         int
	UserNotFound        int
	LookupError         int
	VerifyCanonical     int
	VerifyLegacyLibrary int
	VerifyLegacyDotPair int
	VerifyUnrecognized  int
	MigrationApplied    int
	MigrationFailed     int
	MigrationSkipped    int
	Latency             int
}

// AuthenticateEvents carries audit event names used by the authenticate flow.
type AuthenticateEvents struct {
	AuthSuccess     string
	AuthFailure     string
	Migrated        string
	MigrationFailed string
	LookupFailed    string
}

// AuthenticateErrors carries host-level sentinel errors used by the authenticate flow.
type AuthenticateErrors struct {
	EngineNotReady       error
	InvalidCredentials   error
	UserNotFound         error
	UserLookupFailed     error
	MigrationWriteFailed error
	MalformedCredential  error
}

const (
	reasonEmptyInput          = "empty_input"
	reasonUserNotFound        = "user_not_found"
	reasonPasswordMismatch    = "password_mismatch"
	reasonMalformedCredential = "malformed_credential"
)

// AuthenticateDeps captures authenticate dependencies.
type AuthenticateDeps struct {
	UpgradeOnLogin         bool
	EqualizeNotFoundTiming bool
	// DummyCredential is verified on the not-found path so it costs a derivation too.
	DummyCredential string

	Now func() time.Time

	GetUserByIdentifier func(context.Context, string, IdentifierKind) (AuthenticateUserRecord, error)
	UpdatePasswordHash  func(context.Context, string, string) error

	Verify       func(string, string) password.Outcome
	HashPassword func(string) (string, error)
	// RunDerivation runs fn under the derivation bound, or returns ctx.Err().
	RunDerivation func(context.Context, func()) error

	MetricInc     func(int)
	MetricObserve func(int, time.Duration)
	EmitAudit     func(ctx context.Context, event string, success bool, userID, form, reason string, err error)
	Logger        *slog.Logger

	Metrics AuthenticateMetrics
	Events  AuthenticateEvents
	Errors  AuthenticateErrors
}

// NormalizeIdentifier trims surrounding whitespace and lower-cases identifier.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// RunAuthenticate executes lookup, verification and rehash-on-login.
//
// Unknown users, wrong passwords and malformed stored credentials all return
// Errors.InvalidCredentials. Provider lookup failures are returned wrapped in
// Errors.UserLookupFailed. A failed migration write never fails the login; it is reported
// through AuthenticateResult.MigrationErr.
func RunAuthenticate(ctx context.Context, identifier, plain string, deps AuthenticateDeps) (*AuthenticateResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.MetricObserve == nil {
		deps.MetricObserve = func(int, time.Duration) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, string, error) {}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.RunDerivation == nil {
		deps.RunDerivation = func(ctx context.Context, fn func()) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		}
	}
	if deps.GetUserByIdentifier == nil ||
		deps.UpdatePasswordHash == nil ||
		deps.Verify == nil ||
		deps.HashPassword == nil {
		return nil, deps.Errors.EngineNotReady
	}

	start := deps.Now()
	defer func() {
		deps.MetricObserve(deps.Metrics.Latency, deps.Now().Sub(start))
	}()

	fail := func(userID, form, reason string) error {
		cause := deps.Errors.InvalidCredentials
		if reason == reasonMalformedCredential && deps.Errors.MalformedCredential != nil {
			cause = deps.Errors.MalformedCredential
		}
		deps.MetricInc(deps.Metrics.AuthFailure)
		deps.EmitAudit(ctx, deps.Events.AuthFailure, false, userID, form, reason, cause)
		return deps.Errors.InvalidCredentials
	}

	normalized := NormalizeIdentifier(identifier)
	if normalized == "" || plain == "" {
		return nil, fail("", "", reasonEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := lookupUser(ctx, normalized, deps)
	notFound := errors.Is(err, deps.Errors.UserNotFound)
	if err != nil && !notFound {
		lookupErr := fmt.Errorf("%w: %w", deps.Errors.UserLookupFailed, err)
		deps.MetricInc(deps.Metrics.LookupError)
		deps.EmitAudit(ctx, deps.Events.LookupFailed, false, "", "", "", lookupErr)
		return nil, lookupErr
	}
	if notFound || user.PasswordHash == "" {
		deps.MetricInc(deps.Metrics.UserNotFound)
		if err := equalize(ctx, plain, deps); err != nil {
			return nil, err
		}
		return nil, fail("", "", reasonUserNotFound)
	}

	var outcome password.Outcome
	if err := deps.RunDerivation(ctx, func() {
		outcome = deps.Verify(plain, user.PasswordHash)
	}); err != nil {
		return nil, err
	}
	deps.MetricInc(verifyMetric(outcome.Form, deps.Metrics))

	form := outcome.Form.String()
	if outcome.Form == password.FormUnrecognized {
		deps.Logger.WarnContext(ctx, "stored credential is malformed", "user_id", user.UserID)
		if err := equalize(ctx, plain, deps); err != nil {
			return nil, err
		}
		return nil, fail(user.UserID, form, reasonMalformedCredential)
	}
	if !outcome.Matched {
		return nil, fail(user.UserID, form, reasonPasswordMismatch)
	}

	result := &AuthenticateResult{
		User:      user,
		Form:      outcome.Form,
		Migration: MigrationNotNeeded,
	}

	if outcome.ShouldMigrate {
		migrate(ctx, plain, result, deps)
	}

	deps.MetricInc(deps.Metrics.AuthSuccess)
	deps.EmitAudit(ctx, deps.Events.AuthSuccess, true, user.UserID, form, "", nil)
	return result, nil
}

// equalize spends one derivation on the engine-owned dummy credential so paths that never
// reach a real verification cost about as much as a mismatch.
func equalize(ctx context.Context, plain string, deps AuthenticateDeps) error {
	if !deps.EqualizeNotFoundTiming || deps.DummyCredential == "" {
		return nil
	}
	return deps.RunDerivation(ctx, func() {
		_ = deps.Verify(plain, deps.DummyCredential)
	})
}

func lookupUser(ctx context.Context, normalized string, deps AuthenticateDeps) (AuthenticateUserRecord, error) {
	user, err := deps.GetUserByIdentifier(ctx, normalized, IdentifierUsername)
	if errors.Is(err, deps.Errors.UserNotFound) && strings.Contains(normalized, "@") {
		user, err = deps.GetUserByIdentifier(ctx, normalized, IdentifierEmail)
	}
	return user, err
}

func migrate(ctx context.Context, plain string, result *AuthenticateResult, deps AuthenticateDeps) {
	userID := result.User.UserID
	form := result.Form.String()

	if !deps.UpgradeOnLogin || ctx.Err() != nil {
		result.Migration = MigrationSkipped
		deps.MetricInc(deps.Metrics.MigrationSkipped)
		return
	}

	var (
		newHash string
		hashErr error
	)
	if err := deps.RunDerivation(ctx, func() {
		newHash, hashErr = deps.HashPassword(plain)
	}); err != nil {
		result.Migration = MigrationSkipped
		deps.MetricInc(deps.Metrics.MigrationSkipped)
		return
	}

	writeErr := hashErr
	if writeErr == nil {
		writeErr = deps.UpdatePasswordHash(ctx, userID, newHash)
	}
	if writeErr != nil {
		result.Migration = MigrationFailed
		result.MigrationErr = fmt.Errorf("%w: %w", deps.Errors.MigrationWriteFailed, writeErr)
		deps.MetricInc(deps.Metrics.MigrationFailed)
		deps.EmitAudit(ctx, deps.Events.MigrationFailed, false, userID, form, "", result.MigrationErr)
		deps.Logger.WarnContext(ctx, "credential migration failed", "user_id", userID, "form", form, "error", writeErr)
		return
	}

	result.Migration = MigrationApplied
	result.User.PasswordHash = newHash
	deps.MetricInc(deps.Metrics.MigrationApplied)
	deps.EmitAudit(ctx, deps.Events.Migrated, true, userID, form, "", nil)
	deps.Logger.DebugContext(ctx, "credential migrated", "user_id", userID, "from", form)
}

func verifyMetric(form password.Form, m AuthenticateMetrics) int {
	switch form {
	case password.FormCanonical:
		return m.VerifyCanonical
	case password.FormLegacyLibrary:
		return m.VerifyLegacyLibrary
	case password.FormLegacyDotPair:
		return m.VerifyLegacyDotPair
	default:
		return m.VerifyUnrecognized
	}
}
