package metrics

import (
	"time"

	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the ledger counters.
const (
	OutcomeSuccess           = "success"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalidStatus     = "invalid_status"
	OutcomeConflict          = "conflict"
	OutcomeError             = "error"
)

// LedgerMetrics records reservation and stock ledger activity.
type LedgerMetrics struct {
	transitions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	stockUpdates *prometheus.CounterVec
	events       *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_operations_total",
		Help: "Reservation ledger operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservation_operation_duration_seconds",
		Help:    "Duration of reservation ledger operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	stockUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_updates_total",
		Help: "Admin stock updates by outcome.",
	}, []string{"outcome"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Realtime notifications by event type and delivery result.",
	}, []string{"event", "result"})
	reg.MustRegister(transitions, duration, stockUpdates, events)
	return &LedgerMetrics{
		transitions:  transitions,
		duration:     duration,
		stockUpdates: stockUpdates,
		events:       events,
	}
}

// ObserveOperation records the outcome and latency of a ledger operation.
func (m *LedgerMetrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}

// IncStockUpdate increments the stock update counter.
func (m *LedgerMetrics) IncStockUpdate(outcome string) {
	if m == nil || m.stockUpdates == nil {
		return
	}
	m.stockUpdates.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncEvent increments the realtime delivery counter.
func (m *LedgerMetrics) IncEvent(event, result string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(event), normalizeLabel(result)).Inc()
}

// OutcomeFor maps an operation error onto its outcome label.
func OutcomeFor(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeNotFound:
		return OutcomeNotFound
	case pkgerrors.CodeInsufficientStock:
		return OutcomeInsufficientStock
	case pkgerrors.CodeInvalidStatusTransition:
		return OutcomeInvalidStatus
	case pkgerrors.CodeApprovalConflict, pkgerrors.CodeConflict:
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
