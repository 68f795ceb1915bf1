package pricefeed

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Fetches *prometheus.CounterVec
	Cache   *prometheus.CounterVec
}

// NewMetrics creates the price feed counters and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethtp_price_fetch_total",
				Help: "Price fetches by source and result",
			},
			[]string{"source", "result"},
		),
		Cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethtp_price_cache_total",
				Help: "Price cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Fetches, m.Cache)
	}
	return m
}

func (m *Metrics) fetch(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Fetches.WithLabelValues(source, result).Inc()
}

func (m *Metrics) cache(result string) {
	if m == nil {
		return
	}
	m.Cache.WithLabelValues(result).Inc()
}
