package goCred

import (
	"errors"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goCred/internal/audit"
	"github.com/MrEthical07/goCred/internal/flows"
	"github.com/MrEthical07/goCred/internal/hashpool"
	"github.com/MrEthical07/goCred/password"
)

// Engine verifies credentials and migrates them to the canonical form on login.
//
// Engine instances are built once through [Builder.Build] and are safe for concurrent use.
type Engine struct {
	config       Config
	hasher       *password.Hasher
	pool         *hashpool.Pool
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	logger       *slog.Logger
	userProvider UserProvider
	// dummyCredential is a canonical credential for a random secret, verified on the
	// not-found path.
	dummyCredential string
	flowDeps        flows.Deps
}

// Close flushes pending audit events and stops the dispatcher.
//
// Close is idempotent and safe to call on a nil Engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of every counter and histogram.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// HashPassword encodes plain as a canonical credential with the current parameters.
// Host applications use it for account creation and password changes.
//
// HashPassword returns ErrPasswordPolicy for empty or oversized plaintexts.
func (e *Engine) HashPassword(plain string) (string, error) {
	if e == nil || e.hasher == nil {
		return "", ErrEngineNotReady
	}
	encoded, err := e.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) || errors.Is(err, password.ErrPasswordTooLong) {
			return "", ErrPasswordPolicy
		}
		return "", err
	}
	return encoded, nil
}

// Verify checks plain against stored without any lookup, write, audit or metric side
// effect. Malformed stored values return a zero result.
func (e *Engine) Verify(plain, stored string) VerifyResult {
	if e == nil || e.hasher == nil {
		return VerifyResult{}
	}
	return e.hasher.Verify(plain, stored)
}

// NeedsMigration reports whether stored would be rewritten on the next successful login.
func (e *Engine) NeedsMigration(stored string) bool {
	if e == nil || e.hasher == nil {
		return false
	}
	return e.hasher.NeedsUpgrade(stored)
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}
