package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"axiomarium/internal/domain"
)

// Metrics holds the Prometheus instruments for registration traffic.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Flagged       prometheus.Counter
	Errors        *prometheus.CounterVec
	RegistrySize  prometheus.Gauge
}

// NewMetrics registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axiomarium_declarations_total",
			Help: "Declarations registered, by kind.",
		}, []string{"kind"}),
		Flagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "axiomarium_flagged_total",
			Help: "Declarations registered in the flagged state.",
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axiomarium_registration_errors_total",
			Help: "Rejected registrations, by reason.",
		}, []string{"reason"}),
		RegistrySize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "axiomarium_registry_declarations",
			Help: "Declarations currently in the registry.",
		}),
	}
}

// observe records a successful registration.
func (m *Metrics) observe(decl *domain.Declaration) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(string(decl.Kind)).Inc()
	if decl.State == domain.StateFlagged {
		m.Flagged.Inc()
	}
}

// observeError records a rejected registration.
func (m *Metrics) observeError(err error) {
	if m == nil || err == nil {
		return
	}
	m.Errors.WithLabelValues(errorReason(err)).Inc()
}

// errorReason maps an error to its metric label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, domain.ErrUnknownSort):
		return "unknown_sort"
	case errors.Is(err, domain.ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, domain.ErrInvalidInvariant):
		return "invalid_invariant"
	case errors.Is(err, domain.ErrCyclicDependency):
		return "cyclic_dependency"
	case errors.Is(err, domain.ErrMalformedProof):
		return "malformed_proof"
	case errors.Is(err, domain.ErrProofGap):
		return "proof_gap"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
