package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for lookups, upstream calls and theme toggles.
type Metrics struct {
	Lookups          *prometheus.CounterVec   // labels: trigger={query,location}, outcome={success,not_found,network,geolocation,error}
	UpstreamRequests *prometheus.CounterVec   // labels: api={geocode,forecast}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: api={geocode,forecast}
	ThemeToggles     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.Lookups,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.ThemeToggles,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_lookup",
			Name:      "lookups_total",
			Help:      help("Completed lookup chains by trigger and outcome."),
		}, []string{"trigger", "outcome"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_lookup",
			Name:      "upstream_requests_total",
			Help:      help("Open-Meteo requests by API and outcome."),
		}, []string{"api", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_lookup",
			Name:      "upstream_duration_seconds",
			Help:      help("Open-Meteo request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"api"}),
		ThemeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_lookup",
			Name:      "theme_toggles_total",
			Help:      help("Number of theme toggles."),
		}),
	}
}
