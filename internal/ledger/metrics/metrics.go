package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the ledger.
type Metrics struct {
	AccountsCreated    prometheus.Counter
	TransfersCommitted *prometheus.CounterVec
	TransfersRejected  *prometheus.CounterVec
	ConflictRetries    prometheus.Counter
	GrantsMinted       prometheus.Counter
}

// New creates and registers all ledger metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintbank_accounts_created_total",
			Help: "Total number of accounts registered",
		}),
		TransfersCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintbank_transfers_committed_total",
			Help: "Total number of committed transfers by kind",
		}, []string{"kind"}),
		TransfersRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintbank_transfers_rejected_total",
			Help: "Total number of rejected transfers by rejection code",
		}, []string{"code"}),
		ConflictRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintbank_conflict_retries_total",
			Help: "Total number of optimistic-concurrency retries inside the engine",
		}),
		GrantsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintbank_grants_minted_total",
			Help: "Total number of committed grants (unbacked currency issuance)",
		}),
	}
}

// IncrementCommitted records a committed transfer of the given kind.
func (m *Metrics) IncrementCommitted(kind string) {
	m.TransfersCommitted.WithLabelValues(kind).Inc()
}

// IncrementRejected records a rejection by code.
func (m *Metrics) IncrementRejected(code string) {
	m.TransfersRejected.WithLabelValues(code).Inc()
}
