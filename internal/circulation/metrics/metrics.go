package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the circulation engine.
type Metrics struct {
	PenaltiesCharged     prometheus.Counter
	OverdueNotifications prometheus.Counter
	ReservationsExpired  prometheus.Counter
	SettlementsCompleted prometheus.Counter
	SettlementsPending   prometheus.Counter
	SweepDuration        prometheus.Histogram
	RequestLatency       *prometheus.HistogramVec
}

// New creates and registers all circulation metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a caller-supplied registerer so tests
// can use an isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PenaltiesCharged: factory.NewCounter(prometheus.CounterOpts{
			Name: "libris_penalties_charged_total",
			Help: "Total number of overdue penalty charges persisted",
		}),
		OverdueNotifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "libris_overdue_notifications_total",
			Help: "Total number of overdue notifications sent",
		}),
		ReservationsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "libris_reservations_expired_total",
			Help: "Total number of reservations expired by the time signal",
		}),
		SettlementsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "libris_settlements_completed_total",
			Help: "Total number of deferred returns settled by penalty payment",
		}),
		SettlementsPending: factory.NewCounter(prometheus.CounterOpts{
			Name: "libris_settlements_pending_total",
			Help: "Total number of returns deferred pending penalty payment",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "libris_tick_sweep_duration_seconds",
			Help:    "Duration of one full time-signal sweep over all subscribers",
			Buckets: prometheus.DefBuckets,
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "libris_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
