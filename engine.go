package credauth

import (
	"github.com/hexfray/credauth/internal/rate"
	"github.com/hexfray/credauth/password"
)

// Engine is the credential authentication policy engine. It decides
// sign-in, password-change, profile-update, and OAuth-upsert outcomes
// against a [UserStore]; it never touches transports or ambient session
// state. Engine methods are safe to call from multiple goroutines after
// construction through [Builder.Build].
type Engine struct {
	config       Config
	userStore    UserStore
	passwordHash *password.Hasher
	throttle     *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close flushes and stops the audit dispatcher. Engine methods must not be
// called after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the outcome counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
