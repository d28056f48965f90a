package credauth

import "sync/atomic"

// MetricID identifies one engine outcome counter.
type MetricID uint8

const (
	// MetricSignInSuccess counts successful credential sign-ins.
	MetricSignInSuccess MetricID = iota
	// MetricSignInFailure counts sign-ins rejected with ErrInvalidCredentials.
	MetricSignInFailure
	// MetricSignInRateLimited counts sign-ins rejected by the throttle.
	MetricSignInRateLimited
	// MetricSignInHashUpgraded counts opportunistic digest rehashes.
	MetricSignInHashUpgraded
	// MetricPasswordChangeSuccess counts successful password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeIncorrectOld counts password changes rejected on
	// the old-password check.
	MetricPasswordChangeIncorrectOld
	// MetricPasswordChangeProviderMismatch counts password changes rejected
	// because the session provider was not "credentials".
	MetricPasswordChangeProviderMismatch
	// MetricProfileUpdateSuccess counts successful display-name updates.
	MetricProfileUpdateSuccess
	// MetricOAuthUserCreated counts OAuth upserts that inserted a record.
	MetricOAuthUserCreated
	// MetricOAuthUserExisting counts OAuth upserts that found an existing
	// record and left it untouched.
	MetricOAuthUserExisting
	// MetricStoreFailure counts operations that failed with
	// ErrStoreUnavailable.
	MetricStoreFailure

	metricCount
)

// Metrics is an in-process registry of atomic outcome counters.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc adds one to the given counter. Safe for concurrent use; a nil
// receiver is a no-op.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= metricCount {
		return 0
	}
	return m.counters[id].Load()
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter. Counters are read individually, so a
// snapshot taken under concurrent load is consistent per counter, not
// across counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricCount))}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
