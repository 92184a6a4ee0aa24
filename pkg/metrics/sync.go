package metrics

import "github.com/prometheus/client_golang/prometheus"

// SyncMetrics counts per-phase outcomes of the registry sync cycle.
type SyncMetrics struct {
	fetched    prometheus.Counter
	applied    prometheus.Counter
	skipped    prometheus.Counter
	errored    prometheus.Counter
	supplement prometheus.Counter
	purged     prometheus.Counter
}

// NewSyncMetrics registers the sync cycle metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	m := &SyncMetrics{
		fetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_transactions_fetched_total",
			Help: "Raw transactions fetched from the registry feed.",
		}),
		applied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_transactions_applied_total",
			Help: "Transactions reconciled into the entity graph.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_transactions_skipped_total",
			Help: "Transactions skipped as benign no-ops.",
		}),
		errored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_transactions_errored_total",
			Help: "Transactions flagged erroneous during reconciliation.",
		}),
		supplement: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_supplements_filled_total",
			Help: "Cases whose senate/link supplement was filled in.",
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_transactions_purged_total",
			Help: "Processed transactions deleted in the purge phase.",
		}),
	}
	reg.MustRegister(m.fetched, m.applied, m.skipped, m.errored, m.supplement, m.purged)
	return m
}

func (m *SyncMetrics) AddFetched(n int) {
	if m == nil || m.fetched == nil {
		return
	}
	m.fetched.Add(float64(n))
}

func (m *SyncMetrics) IncApplied() {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.Inc()
}

func (m *SyncMetrics) IncSkipped() {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.Inc()
}

func (m *SyncMetrics) IncErrored() {
	if m == nil || m.errored == nil {
		return
	}
	m.errored.Inc()
}

func (m *SyncMetrics) IncSupplementFilled() {
	if m == nil || m.supplement == nil {
		return
	}
	m.supplement.Inc()
}

func (m *SyncMetrics) AddPurged(n int64) {
	if m == nil || m.purged == nil {
		return
	}
	m.purged.Add(float64(n))
}
