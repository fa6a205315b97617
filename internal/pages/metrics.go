package pages

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	builds        *prometheus.CounterVec
	revalidations *prometheus.CounterVec
	pages         *prometheus.GaugeVec
}

// NewMetrics creates the page store collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacetraveling",
			Name:      "page_builds_total",
			Help:      "First builds of detail pages by result",
		}, []string{"result"}),
		revalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacetraveling",
			Name:      "page_revalidations_total",
			Help:      "Background revalidations of detail pages by result",
		}, []string{"result"}),
		pages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spacetraveling",
			Name:      "pages",
			Help:      "Detail pages currently held by state",
		}, []string{"state"}),
	}
	reg.MustRegister(m.builds, m.revalidations, m.pages)
	return m
}

func (m *Metrics) build(result string) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(result).Inc()
}

func (m *Metrics) revalidation(result string) {
	if m == nil {
		return
	}
	m.revalidations.WithLabelValues(result).Inc()
}

// transition moves one page between state gauges. from is nil for new pages
// and to is nil for forgotten ones.
func (m *Metrics) transition(from, to *State) {
	if m == nil {
		return
	}
	if from != nil {
		m.pages.WithLabelValues(from.String()).Dec()
	}
	if to != nil {
		m.pages.WithLabelValues(to.String()).Inc()
	}
}
