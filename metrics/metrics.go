// Package metrics exposes the daemon's prometheus counters and gauges:
// LSA churn, recompute activity, and kernel route operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector registered by this daemon. Pass nil to
// New to use the default, ungrouped registry.
type Metrics struct {
	LSAsOriginated   prometheus.Counter
	LSAsReceived     prometheus.Counter
	LSAsDecodeErrors prometheus.Counter
	LSAsFlooded      prometheus.Counter

	RecomputesRun     prometheus.Counter
	RecomputesSkipped prometheus.Counter

	KernelOpsTotal *prometheus.CounterVec

	LSDBSize prometheus.Gauge
}

// New registers and returns a fresh set of collectors on reg. If reg is
// nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		LSAsOriginated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lsrouted_lsas_originated_total",
			Help: "LSAs originated by this router.",
		}),
		LSAsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lsrouted_lsas_received_total",
			Help: "LSAs received on the flood socket.",
		}),
		LSAsDecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lsrouted_lsas_decode_errors_total",
			Help: "Inbound datagrams dropped for failing LSA decode validation.",
		}),
		LSAsFlooded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lsrouted_lsas_flooded_total",
			Help: "LSAs re-flooded to active neighbors after a successful merge.",
		}),
		RecomputesRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lsrouted_recomputes_total",
			Help: "SPF recompute passes actually run.",
		}),
		RecomputesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lsrouted_recomputes_skipped_total",
			Help: "SPF recompute passes skipped because the LSDB snapshot hash was unchanged.",
		}),
		KernelOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lsrouted_kernel_route_ops_total",
			Help: "Kernel route operations applied by the reconciler, by verb.",
		}, []string{"verb"}),
		LSDBSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lsrouted_lsdb_entries",
			Help: "Number of originators currently held in the LSDB.",
		}),
	}

	reg.MustRegister(
		m.LSAsOriginated,
		m.LSAsReceived,
		m.LSAsDecodeErrors,
		m.LSAsFlooded,
		m.RecomputesRun,
		m.RecomputesSkipped,
		m.KernelOpsTotal,
		m.LSDBSize,
	)

	return m
}

// Handler returns the HTTP handler exposing collectors in the
// Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
