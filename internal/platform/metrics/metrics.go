package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	IDsAllocated    *prometheus.CounterVec
	WaitlistJoins   prometheus.Counter
	WaitlistLeaves  prometheus.Counter
	DrawsRun        prometheus.Counter
	EntrantsInvited prometheus.Counter
	CascadeDeletes  prometheus.Counter
	DrawDuration    prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		IDsAllocated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_ids_allocated_total",
			Help: "Unique identifiers handed out, by counter field",
		}, []string{"field"}),
		WaitlistJoins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballot_waitlist_joins_total",
			Help: "Successful waitlist joins",
		}),
		WaitlistLeaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballot_waitlist_leaves_total",
			Help: "Successful waitlist departures",
		}),
		DrawsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballot_draws_total",
			Help: "Lottery draws committed",
		}),
		EntrantsInvited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballot_entrants_invited_total",
			Help: "Entrants moved from waitlisted to invited by draws",
		}),
		CascadeDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballot_cascade_deletes_total",
			Help: "Organizer cascade deletions committed",
		}),
		DrawDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballot_draw_duration_ms",
			Help:    "Latency of lottery draws in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// ObserveDraw records one committed draw with its latency and invite count.
func (m *Metrics) ObserveDraw(start time.Time, invited int) {
	m.DrawsRun.Inc()
	m.EntrantsInvited.Add(float64(invited))
	m.DrawDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
