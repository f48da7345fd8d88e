package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	BookingsCreated     prometheus.Counter
	DuplicateRejections prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	RejectedTransitions *prometheus.CounterVec
	BookingsModified    prometheus.Counter
	SearchesRecorded    prometheus.Counter
}

// New registers and returns the service metrics under the given namespace.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created",
		}),
		DuplicateRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_bookings_rejected_total",
			Help:      "Create calls rejected because the booking ID already existed",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Applied status transitions",
		}, []string{"from", "to"}),
		RejectedTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_rejected_total",
			Help:      "Transitions rejected by the status policy",
		}, []string{"from", "to"}),
		BookingsModified: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_modified_total",
			Help:      "Customer modifications applied to bookings",
		}),
		SearchesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicle_searches_recorded_total",
			Help:      "Vehicle search records persisted",
		}),
	}
}
