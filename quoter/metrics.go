package quoter

import "github.com/prometheus/client_golang/prometheus"

const (
	regimeExact  = "exact"
	regimeApprox = "approx"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics holds the collectors a Quoter reports to.
type Metrics struct {
	quotesTotal   *prometheus.CounterVec
	quoteDuration *prometheus.HistogramVec
	quoteSteps    *prometheus.HistogramVec
	quoteCrossed  *prometheus.HistogramVec
}

// NewMetrics creates the quoter collectors and registers them with reg.
// It panics if a collector with the same name is already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "v3swap",
			Subsystem: "quoter",
			Name:      "quotes_total",
			Help:      "Number of quotes computed, by arithmetic regime and outcome.",
		}, []string{"regime", "outcome"}),
		quoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "v3swap",
			Subsystem: "quoter",
			Name:      "quote_duration_seconds",
			Help:      "Time taken to compute a quote.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"regime"}),
		quoteSteps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "v3swap",
			Subsystem: "quoter",
			Name:      "quote_steps",
			Help:      "Swap loop iterations per quote.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"regime"}),
		quoteCrossed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "v3swap",
			Subsystem: "quoter",
			Name:      "quote_ticks_crossed",
			Help:      "Initialized ticks crossed per quote.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"regime"}),
	}

	reg.MustRegister(m.quotesTotal, m.quoteDuration, m.quoteSteps, m.quoteCrossed)
	return m
}
