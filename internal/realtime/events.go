package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/google/uuid"
)

const (
	EventStockUpdated       = "StockUpdated"
	EventReservationUpdated = "ReservationUpdated"
)

// Notifier receives ledger change notifications after they are committed.
// Implementations must not block the caller and must not report failures.
type Notifier interface {
	StockUpdated(ctx context.Context, event StockUpdatedEvent)
	ReservationUpdated(ctx context.Context, event ReservationUpdatedEvent)
}

// StockUpdatedEvent carries the new on-hand quantity for a stock line.
type StockUpdatedEvent struct {
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
}

// ReservationUpdatedEvent carries the reservation state after a transition.
type ReservationUpdatedEvent struct {
	ReservationID   uuid.UUID               `json:"reservation_id"`
	UserID          uuid.UUID               `json:"user_id"`
	PharmacyID      uuid.UUID               `json:"pharmacy_id"`
	MedicineID      uuid.UUID               `json:"medicine_id"`
	Quantity        int                     `json:"quantity"`
	Status          enums.ReservationStatus `json:"status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// Envelope is the wire form shared by the redis channel and the stream endpoint.
type Envelope struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEnvelope encodes payload under the given event type.
func NewEnvelope(eventType string, payload any, now time.Time) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Data: data, OccurredAt: now.UTC()}, nil
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) StockUpdated(context.Context, StockUpdatedEvent) {}

func (NopNotifier) ReservationUpdated(context.Context, ReservationUpdatedEvent) {}
