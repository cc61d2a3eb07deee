package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	LoginStartedTotal          prometheus.Counter
	ProfilesCachedTotal        prometheus.Counter
	TokensIssuedTotal          prometheus.Counter
	LoginFailureTotal          prometheus.Counter
	StrategiesRegisteredTotal  prometheus.Counter
	ReconcilePassTotal         prometheus.Counter
	ReconcileFailureTotal      prometheus.Counter
	ReconcileStoreFailureTotal prometheus.Counter
)

// Init initializes and registers the broker's Prometheus metrics. It should
// be called once at application startup.
func Init(reg prometheus.Registerer) {
	LoginStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_logins_started_total",
		Help: "Total number of login flows started.",
	})
	ProfilesCachedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_profiles_cached_total",
		Help: "Total number of provider profiles written to the cache.",
	})
	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_tokens_issued_total",
		Help: "Total number of customer tokens issued.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_logins_failure_total",
		Help: "Total number of failed login attempts.",
	})
	StrategiesRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_strategies_registered_total",
		Help: "Total number of strategy registrations installed.",
	})
	ReconcilePassTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_reconcile_passes_total",
		Help: "Total number of completed reconciliation passes.",
	})
	ReconcileFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_reconcile_failures_total",
		Help: "Total number of reconciliation passes aborted before fan-out.",
	})
	ReconcileStoreFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "passport_reconcile_store_failures_total",
		Help: "Total number of per-store credential fetches that failed.",
	})

	if reg == nil {
		return
	}
	for _, c := range []prometheus.Collector{
		LoginStartedTotal,
		ProfilesCachedTotal,
		TokensIssuedTotal,
		LoginFailureTotal,
		StrategiesRegisteredTotal,
		ReconcilePassTotal,
		ReconcileFailureTotal,
		ReconcileStoreFailureTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}
}

func init() {
	// Metrics must be usable from tests that never call Init with a
	// registry.
	Init(nil)
}
