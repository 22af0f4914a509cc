package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cronos",
			Name:      "reservation_created_total",
			Help:      "Count of reservations created by entry point.",
		},
		[]string{"source"},
	)

	reservationCanceled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cronos",
			Name:      "reservation_canceled_total",
			Help:      "Count of cancellation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	validationRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cronos",
			Name:      "validation_rejected_total",
			Help:      "Count of re-prompts caused by invalid input, by step.",
		},
		[]string{"step"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cronos",
			Name:      "slot_conflict_total",
			Help:      "Count of commits rejected by the slot uniqueness constraint.",
		},
	)

	remindersFired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cronos",
			Name:      "reminder_fired_total",
			Help:      "Count of reminder callbacks fired.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cronos",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationCreated,
			reservationCanceled,
			validationRejected,
			slotConflicts,
			remindersFired,
			httpRequests,
		)
	})
}

func IncReservationCreated(source string) {
	reservationCreated.WithLabelValues(source).Inc()
}

func IncReservationCanceled(outcome string) {
	reservationCanceled.WithLabelValues(outcome).Inc()
}

func IncValidationRejected(step string) {
	validationRejected.WithLabelValues(step).Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncReminderFired() {
	remindersFired.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
