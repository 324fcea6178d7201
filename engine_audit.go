package goCred

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/MrEthical07/goCred/internal/audit"
)

const (
	auditEventAuthSuccess         = "auth_success"
	auditEventAuthFailure         = "auth_failure"
	auditEventCredentialMigrated  = "credential_migrated"
	auditEventMigrationFailed     = "credential_migration_failed"
	auditEventCredentialLookupErr = "credential_lookup_failed"
)

// AuditErrorCode is the stable error label written to AuditEvent.Error. Raw provider
// errors are never copied into audit records.
type AuditErrorCode string

const (
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrMalformedCredential AuditErrorCode = "malformed_credential"
	auditErrPasswordPolicy      AuditErrorCode = "password_policy"
	auditErrCanceled            AuditErrorCode = "canceled"
	auditErrUnavailable         AuditErrorCode = "backend_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	form string,
	reason string,
	err error,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Form:      form,
		Reason:    reason,
		Success:   success,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}
	if md := requestMetadata(ctx); len(md) > 0 {
		event.Metadata = md
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrMalformedCredential):
		return auditErrMalformedCredential
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	case errors.Is(err, ErrUserLookupFailed),
		errors.Is(err, ErrMigrationWriteFailed),
		errors.Is(err, ErrUserNotFound):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
