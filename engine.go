package authrail

import (
	"context"
	"time"

	"github.com/authrail/authrail/jwt"
	"github.com/authrail/authrail/route"
)

// Engine composes the route registry, the permission resolver, and the token
// manager into the authorization gate. It holds no per-request state and is
// safe for concurrent use; every decision recomputes authorization from the
// store of record, so revocations take effect on the next request.
type Engine struct {
	config   Config
	registry *route.Registry
	store    Store
	mgmt     ManagementStore
	users    UserProvider
	tokens   *jwt.Manager
	audit    *auditDispatcher
	metrics  *Metrics
	now      func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Registry returns the route registry the gate evaluates against.
func (e *Engine) Registry() *route.Registry {
	if e == nil {
		return nil
	}
	return e.registry
}

// SnapshotVerifyKey returns the key material clients need to verify snapshot
// tokens locally: the Ed25519 public key, or the HS256 shared secret.
func (e *Engine) SnapshotVerifyKey() ([]byte, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	return e.tokens.VerifyKey()
}

// AuditDropped reports how many audit events were dropped by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine metrics.
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

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) management() (ManagementStore, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if e.mgmt == nil {
		return nil, ErrManagementNotSupported
	}
	return e.mgmt, nil
}
