package goCred

// SecurityReport summarizes the credential posture of a built Engine, for startup logs and
// health endpoints.
type SecurityReport struct {
	ProductionMode         bool
	Password               PasswordConfigReport
	LegacyLibraryAccepted  bool
	LegacyDotPairDigest    string
	LegacyDotPairIters     uint32
	UpgradeOnLogin         bool
	NotFoundTimingEqual    bool
	DerivationConcurrency  int
	AuditEnabled           bool
	MetricsEnabled         bool
	LintHighSeverityIssues int
}

// PasswordConfigReport describes the canonical parameters new credentials get.
type PasswordConfigReport struct {
	Algorithm  string
	Iterations uint32
	KeyLength  uint32
	SaltLength uint32
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	cfg := e.config
	return SecurityReport{
		ProductionMode: cfg.Security.ProductionMode,
		Password: PasswordConfigReport{
			Algorithm:  cfg.Password.Algorithm,
			Iterations: cfg.Password.Iterations,
			KeyLength:  cfg.Password.KeyLength,
			SaltLength: cfg.Password.SaltLength,
		},
		LegacyLibraryAccepted:  cfg.Legacy.LibraryEnabled,
		LegacyDotPairDigest:    cfg.Legacy.DotPairDigest,
		LegacyDotPairIters:     cfg.Legacy.DotPairIterations,
		UpgradeOnLogin:         cfg.Migration.UpgradeOnLogin,
		NotFoundTimingEqual:    cfg.Security.EqualizeNotFoundTiming,
		DerivationConcurrency:  e.pool.Size(),
		AuditEnabled:           cfg.Audit.Enabled,
		MetricsEnabled:         cfg.Metrics.Enabled,
		LintHighSeverityIssues: len(cfg.Lint().AtLeast(LintHigh)),
	}
}
