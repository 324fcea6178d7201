package goCred

import (
	"errors"
	"log/slog"

	internalaudit "github.com/MrEthical07/goCred/internal/audit"
	"github.com/MrEthical07/goCred/internal/flows"
	"github.com/MrEthical07/goCred/internal/hashpool"
	"github.com/MrEthical07/goCred/password"
)

// Builder assembles an [Engine]. It is single-use: Build may succeed at most once.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	userProvider UserProvider
	auditSink    AuditSink
	logger       *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserProvider sets the required user lookup and persistence capability.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the sink the async audit dispatcher delivers to. It has no effect
// unless Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Without one the Engine logs nothing.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
//
// Build returns an error when the configuration is invalid, no UserProvider was supplied,
// or the Builder was already used.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	hasher, err := password.NewHasher(cfg.passwordConfig())
	if err != nil {
		return nil, err
	}

	// Verified on the not-found and malformed paths so they cost a full derivation too.
	dummy, err := hasher.Dummy()
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		config:          cloneConfig(cfg),
		hasher:          hasher,
		pool:            hashpool.New(cfg.Security.MaxConcurrentDerivations),
		metrics:         NewMetrics(cfg.Metrics),
		logger:          logger,
		userProvider:    b.userProvider,
		dummyCredential: dummy,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.flowDeps = flows.Deps{
		Authenticate: engine.authenticateDeps(),
	}

	logger.Debug("credential engine built",
		"algorithm", cfg.Password.Algorithm,
		"iterations", cfg.Password.Iterations,
		"legacy_library", cfg.Legacy.LibraryEnabled,
		"upgrade_on_login", cfg.Migration.UpgradeOnLogin,
		"derivation_slots", engine.pool.Size(),
	)

	b.built = true

	return engine, nil
}
