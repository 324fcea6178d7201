package goCred

import (
	"fmt"

	"github.com/MrEthical07/goCred/password"
)

// LintSeverity ranks a configuration warning.
type LintSeverity uint8

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintHigh:
		return "high"
	case LintWarn:
		return "warn"
	default:
		return "info"
	}
}

// LintWarning is a configuration choice that passes Validate but deserves a second look.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of warnings produced by [Config.Lint].
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// AtLeast returns the warnings whose severity is at least min.
func (r LintResult) AtLeast(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// Lint reports configuration choices that are valid but weaken the credential posture.
// It never fails; call Validate for hard errors.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.Password.Algorithm == password.AlgorithmPBKDF2SHA256 && c.Password.Iterations < 600000 {
		add("iterations_below_guidance", LintWarn,
			"pbkdf2-sha256 with %d iterations is below the 600000 guidance", c.Password.Iterations)
	}
	if c.Password.Algorithm == password.AlgorithmPBKDF2SHA512 && c.Password.Iterations < 210000 {
		add("iterations_below_guidance", LintWarn,
			"pbkdf2-sha512 with %d iterations is below the 210000 guidance", c.Password.Iterations)
	}
	if !c.Migration.UpgradeOnLogin {
		add("upgrade_on_login_disabled", LintHigh,
			"legacy and weak credentials will never be migrated")
	}
	if c.Legacy.LibraryEnabled {
		add("legacy_library_enabled", LintInfo,
			"bcrypt credentials are still accepted")
	}
	if c.Legacy.DotPairDigest == "sha1" {
		add("legacy_sha1_digest", LintWarn,
			"dot-pair credentials use sha1; migrate them promptly")
	}
	if !c.Security.EqualizeNotFoundTiming {
		add("not_found_timing_unequal", LintHigh,
			"unknown identifiers return faster than wrong passwords")
	}
	if c.Audit.Enabled && c.Audit.DropIfFull {
		add("audit_may_drop", LintInfo,
			"audit events are dropped when the buffer is full")
	}
	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo,
			"migration progress is not observable without metrics")
	}

	return ws
}
