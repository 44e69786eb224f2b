package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart engine activity.
type CartMetrics struct {
	mutations   *prometheus.CounterVec
	submissions *prometheus.CounterVec
	sessions    prometheus.Gauge
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_sessions_active",
		Help: "Cart sessions currently held in memory.",
	})
	reg.MustRegister(mutations, submissions, sessions)
	return &CartMetrics{
		mutations:   mutations,
		submissions: submissions,
		sessions:    sessions,
	}
}

// ObserveMutation counts one cart mutation attempt.
func (c *CartMetrics) ObserveMutation(op string, err error) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op), outcomeLabel(err)).Inc()
}

// ObserveSubmission counts one checkout submission attempt.
func (c *CartMetrics) ObserveSubmission(err error) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(outcomeLabel(err)).Inc()
}

// SetActiveSessions tracks how many session carts are resident.
func (c *CartMetrics) SetActiveSessions(n int) {
	if c == nil || c.sessions == nil {
		return
	}
	c.sessions.Set(float64(n))
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
