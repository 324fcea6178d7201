package goCred

import (
	"context"
	"time"

	"github.com/MrEthical07/goCred/internal/flows"
)

// Authenticate verifies password for the user named by identifier and, on success,
// rewrites a legacy or weak stored credential in canonical form.
//
// The identifier is trimmed and lower-cased, then looked up as a username and, when it
// contains '@' and no username matched, as an email address. Unknown users, wrong
// passwords and malformed stored credentials all return [ErrInvalidCredentials]. Lookup
// failures other than [ErrUserNotFound] are returned wrapped in [ErrUserLookupFailed].
//
// Migration failures never fail the login: they are reported through
// AuthResult.Migration and AuthResult.MigrationErr. If ctx is done before verification
// completes, ctx.Err() is returned and nothing is written.
func (e *Engine) Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error) {
	if e == nil || e.hasher == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := flows.RunAuthenticate(ctx, identifier, password, e.flowDeps.Authenticate)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User: UserRecord{
			UserID:       res.User.UserID,
			Username:     res.User.Username,
			Email:        res.User.Email,
			PasswordHash: res.User.PasswordHash,
		},
		Form:         res.Form,
		Migration:    res.Migration,
		MigrationErr: res.MigrationErr,
	}, nil
}

func (e *Engine) authenticateDeps() flows.AuthenticateDeps {
	return flows.AuthenticateDeps{
		UpgradeOnLogin:         e.config.Migration.UpgradeOnLogin,
		EqualizeNotFoundTiming: e.config.Security.EqualizeNotFoundTiming,
		DummyCredential:        e.dummyCredential,
		Now:                    time.Now,
		GetUserByIdentifier: func(ctx context.Context, identifier string, kind flows.IdentifierKind) (flows.AuthenticateUserRecord, error) {
			u, err := e.userProvider.GetUserByIdentifier(ctx, identifier, kind)
			if err != nil {
				return flows.AuthenticateUserRecord{}, err
			}
			return flows.AuthenticateUserRecord{
				UserID:       u.UserID,
				Username:     u.Username,
				Email:        u.Email,
				PasswordHash: u.PasswordHash,
			}, nil
		},
		UpdatePasswordHash: e.userProvider.UpdatePasswordHash,
		Verify:             e.hasher.Verify,
		HashPassword:       e.hasher.Hash,
		RunDerivation:      e.pool.Do,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		MetricObserve: func(id int, d time.Duration) {
			e.metricObserve(MetricID(id), d)
		},
		EmitAudit: e.emitAudit,
		Logger:    e.logger,
		Metrics: flows.AuthenticateMetrics{
			AuthSuccess:         int(MetricAuthSuccess),
			AuthFailure:         int(MetricAuthFailure),
			UserNotFound:        int(MetricUserNotFound),
			LookupError:         int(MetricLookupError),
			VerifyCanonical:     int(MetricVerifyCanonical),
			VerifyLegacyLibrary: int(MetricVerifyLegacyLibrary),
			VerifyLegacyDotPair: int(MetricVerifyLegacyDotPair),
			VerifyUnrecognized:  int(MetricVerifyUnrecognized),
			MigrationApplied:    int(MetricMigrationApplied),
			MigrationFailed:     int(MetricMigrationFailed),
			MigrationSkipped:    int(MetricMigrationSkipped),
			Latency:             int(MetricAuthenticateLatency),
		},
		Events: flows.AuthenticateEvents{
			AuthSuccess:     auditEventAuthSuccess,
			AuthFailure:     auditEventAuthFailure,
			Migrated:        auditEventCredentialMigrated,
			MigrationFailed: auditEventMigrationFailed,
			LookupFailed:    auditEventCredentialLookupErr,
		},
		Errors: flows.AuthenticateErrors{
			EngineNotReady:       ErrEngineNotReady,
			InvalidCredentials:   ErrInvalidCredentials,
			UserNotFound:         ErrUserNotFound,
			UserLookupFailed:     ErrUserLookupFailed,
			MigrationWriteFailed: ErrMigrationWriteFailed,
			MalformedCredential:  ErrMalformedCredential,
		},
	}
}
