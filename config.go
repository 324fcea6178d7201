package goCred

import (
	"errors"
	"strings"

	"github.com/MrEthical07/goCred/password"
)

// Config defines the engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Password  PasswordConfig
	Legacy    LegacyConfig
	Migration MigrationConfig
	Security  SecurityConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the parameters every new canonical credential is encoded with.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Algorithm        string // "pbkdf2-sha512" (default) or "pbkdf2-sha256"
	Iterations       uint32
	KeyLength        uint32
	SaltLength       uint32
	MaxPasswordBytes int
}

/*
====================================
LEGACY CONFIG
====================================
*/

// LegacyConfig describes the legacy encodings still accepted by Verify.
//
// Dot-pair credentials were written with one fixed digest and iteration count, which cannot
// be recovered from the stored string and must be configured here.
type LegacyConfig struct {
	DotPairDigest     string // "sha1", "sha256" or "sha512" (default)
	DotPairIterations uint32
	LibraryEnabled    bool // accept bcrypt credentials
}

/*
====================================
MIGRATION CONFIG
====================================
*/

// MigrationConfig controls rehash-on-login.
type MigrationConfig struct {
	UpgradeOnLogin bool
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the authenticate latency histogram.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines hardening switches for the authenticate path.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode bool
	// EqualizeNotFoundTiming runs one derivation against an engine-owned credential when
	// the user does not exist, so unknown identifiers cost about as much as wrong passwords.
	EqualizeNotFoundTiming bool
	// MaxConcurrentDerivations bounds in-flight key derivations. 0 uses GOMAXPROCS.
	MaxConcurrentDerivations int
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:        password.AlgorithmPBKDF2SHA512,
			Iterations:       600000,
			KeyLength:        64,
			SaltLength:       16,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
		},
		Legacy: LegacyConfig{
			DotPairDigest:     "sha512",
			DotPairIterations: 10000,
			LibraryEnabled:    true,
		},
		Migration: MigrationConfig{
			UpgradeOnLogin: true,
		},
		Security: SecurityConfig{
			ProductionMode:           false,
			EqualizeNotFoundTiming:   true,
			MaxConcurrentDerivations: 0,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the baseline configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

// HighSecurityConfig returns a production-hardened preset with a stronger digest budget,
// bcrypt disabled and metrics on.
func HighSecurityConfig() Config {
	cfg := defaultConfig()
	cfg.Password.Iterations = 1_000_000
	cfg.Password.SaltLength = 32
	cfg.Legacy.LibraryEnabled = false
	cfg.Security.ProductionMode = true
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Password.Algorithm = strings.ToLower(strings.TrimSpace(cfg.Password.Algorithm))
	out.Legacy.DotPairDigest = strings.ToLower(strings.TrimSpace(cfg.Legacy.DotPairDigest))
	return out
}

func (c Config) passwordConfig() password.Config {
	return password.Config{
		Algorithm:        c.Password.Algorithm,
		Iterations:       c.Password.Iterations,
		KeyLength:        c.Password.KeyLength,
		SaltLength:       c.Password.SaltLength,
		MaxPasswordBytes: c.Password.MaxPasswordBytes,
		Legacy: password.LegacyParams{
			Digest:     c.Legacy.DotPairDigest,
			Iterations: c.Legacy.DotPairIterations,
		},
		LegacyLibraryEnabled: c.Legacy.LibraryEnabled,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks structural limits and, when ProductionMode is set, the hardening floor.
//
// Validate does not mutate shared global state and can be used concurrently when the receiver is not being modified.
func (c *Config) Validate() error {
	// Password
	switch c.Password.Algorithm {
	case password.AlgorithmPBKDF2SHA256, password.AlgorithmPBKDF2SHA512:
	default:
		return errors.New("Password Algorithm must be pbkdf2-sha256 or pbkdf2-sha512")
	}
	if c.Password.Iterations < 1000 {
		return errors.New("Password Iterations must be >= 1000")
	}
	if c.Password.Iterations > password.MaxIterations {
		return errors.New("Password Iterations must be <= 10000000")
	}
	if c.Password.KeyLength < 16 || c.Password.KeyLength > password.MaxKeyLength {
		return errors.New("Password KeyLength must be between 16 and 512")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}

	// Legacy
	switch c.Legacy.DotPairDigest {
	case "sha1", "sha256", "sha512":
	default:
		return errors.New("Legacy DotPairDigest must be sha1, sha256 or sha512")
	}
	if c.Legacy.DotPairIterations == 0 || c.Legacy.DotPairIterations > password.MaxIterations {
		return errors.New("Legacy DotPairIterations must be between 1 and 10000000")
	}

	// Security
	if c.Security.MaxConcurrentDerivations < 0 {
		return errors.New("Security MaxConcurrentDerivations must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	if c.Security.ProductionMode {
		if c.Password.Iterations < 210000 {
			return errors.New("ProductionMode requires Password Iterations >= 210000")
		}
		if c.Password.KeyLength < 32 {
			return errors.New("ProductionMode requires Password KeyLength >= 32")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("ProductionMode requires Password SaltLength >= 16")
		}
		if !c.Migration.UpgradeOnLogin {
			return errors.New("ProductionMode requires Migration UpgradeOnLogin")
		}
		if !c.Security.EqualizeNotFoundTiming {
			return errors.New("ProductionMode requires Security EqualizeNotFoundTiming")
		}
	}

	return nil
}
