package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service holds the Prometheus collectors for the league cycle.
type Service struct {
	PairingTransitions *prometheus.CounterVec
	Substitutions      *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	WeeksFinalized     prometheus.Counter
	LedgerRows         *prometheus.CounterVec
	FinalizeDuration   prometheus.Histogram
}

// NewMetricsHandler returns an http.Handler for the given Gatherer, or the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the collectors on registerer, or the default registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PairingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playhub_pairing_transitions_total",
			Help: "Pairing lifecycle actions by resulting state.",
		}, []string{"action", "state"}),
		Substitutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playhub_substitutions_total",
			Help: "Substitution requests by status reached.",
		}, []string{"status"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playhub_rejected_operations_total",
			Help: "League-cycle operations rejected by a guard.",
		}, []string{"operation", "reason"}),
		WeeksFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playhub_weeks_finalized_total",
			Help: "Weeks moved to FINAL.",
		}),
		LedgerRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "playhub_ledger_rows_total",
			Help: "Rows appended to the points and rating ledgers.",
		}, []string{"ledger"}),
		FinalizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "playhub_week_finalize_duration_seconds",
			Help:    "Duration of week finalization transactions.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}

	reg.MustRegister(
		s.PairingTransitions,
		s.Substitutions,
		s.Rejections,
		s.WeeksFinalized,
		s.LedgerRows,
		s.FinalizeDuration,
	)

	return s
}

func (s *Service) IncPairingTransition(action, state string) {
	s.PairingTransitions.WithLabelValues(action, state).Inc()
}

func (s *Service) IncSubstitution(status string) {
	s.Substitutions.WithLabelValues(status).Inc()
}

func (s *Service) IncRejected(operation, reason string) {
	s.Rejections.WithLabelValues(operation, reason).Inc()
}

func (s *Service) IncWeekFinalized() {
	s.WeeksFinalized.Inc()
}

func (s *Service) AddLedgerRows(ledger string, n int) {
	s.LedgerRows.WithLabelValues(ledger).Add(float64(n))
}

func (s *Service) ObserveFinalizeDuration(seconds float64) {
	s.FinalizeDuration.Observe(seconds)
}
