package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/google/uuid"
)

type recordingSink struct {
	mu   sync.Mutex
	envs []Envelope
	err  error
	done chan struct{}
}

func newRecordingSink(expect int) *recordingSink {
	return &recordingSink{done: make(chan struct{}, expect)}
}

func (s *recordingSink) Publish(_ context.Context, env Envelope) error {
	s.mu.Lock()
	s.envs = append(s.envs, env)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.err
}

func (s *recordingSink) snapshot() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Envelope(nil), s.envs...)
}

type recordingChannel struct {
	channel string
	payload any
}

func (r *recordingChannel) Publish(_ context.Context, channel string, payload any) error {
	r.channel = channel
	r.payload = payload
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestPublisherDeliversBothEventTypes(t *testing.T) {
	sink := newRecordingSink(2)
	pub, err := NewPublisher(sink, testLogger(), nil, 4, time.Second)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	stock := StockUpdatedEvent{PharmacyID: uuid.New(), MedicineID: uuid.New(), Quantity: 7}
	pub.StockUpdated(context.Background(), stock)
	pub.ReservationUpdated(context.Background(), ReservationUpdatedEvent{
		ReservationID: uuid.New(),
		Status:        enums.ReservationStatusApproved,
	})

	for i := 0; i < 2; i++ {
		select {
		case <-sink.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d", i)
		}
	}

	envs := sink.snapshot()
	if envs[0].Type != EventStockUpdated || envs[1].Type != EventReservationUpdated {
		t.Fatalf("unexpected delivery order %q, %q", envs[0].Type, envs[1].Type)
	}
	var decoded StockUpdatedEvent
	if err := json.Unmarshal(envs[0].Data, &decoded); err != nil {
		t.Fatalf("decode stock event: %v", err)
	}
	if decoded != stock {
		t.Fatalf("expected %+v, got %+v", stock, decoded)
	}
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	sink := newRecordingSink(4)
	pub, err := NewPublisher(sink, testLogger(), nil, 1, time.Second)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	pub.StockUpdated(context.Background(), StockUpdatedEvent{Quantity: 1})
	pub.StockUpdated(context.Background(), StockUpdatedEvent{Quantity: 2})

	if got := len(pub.queue); got != 1 {
		t.Fatalf("expected one queued envelope, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	envs := sink.snapshot()
	if len(envs) != 1 {
		t.Fatalf("expected drained single envelope, got %d", len(envs))
	}
	var decoded StockUpdatedEvent
	if err := json.Unmarshal(envs[0].Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Quantity != 1 {
		t.Fatalf("expected first event kept, got quantity %d", decoded.Quantity)
	}
}

func TestPublisherSwallowsSinkErrors(t *testing.T) {
	sink := newRecordingSink(1)
	sink.err = errors.New("redis down")
	pub, err := NewPublisher(sink, testLogger(), nil, 1, time.Second)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	pub.StockUpdated(context.Background(), StockUpdatedEvent{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Run(ctx); err != nil {
		t.Fatalf("Run should not surface sink errors, got %v", err)
	}
}

func TestNewPublisherValidatesDependencies(t *testing.T) {
	if _, err := NewPublisher(nil, testLogger(), nil, 1, 0); err == nil {
		t.Fatal("expected nil sink to fail")
	}
	if _, err := NewPublisher(NewHubSink(NewHub(nil)), nil, nil, 1, 0); err == nil {
		t.Fatal("expected nil logger to fail")
	}
	if _, err := NewPublisher(NewHubSink(NewHub(nil)), testLogger(), nil, 0, 0); err == nil {
		t.Fatal("expected zero queue to fail")
	}
}

func TestRedisSinkEncodesEnvelope(t *testing.T) {
	rec := &recordingChannel{}
	sink, err := NewRedisSink(rec, "mf:events")
	if err != nil {
		t.Fatalf("NewRedisSink: %v", err)
	}
	env, err := NewEnvelope(EventStockUpdated, StockUpdatedEvent{Quantity: 3}, time.Now())
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if err := sink.Publish(context.Background(), env); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if rec.channel != "mf:events" {
		t.Fatalf("unexpected channel %q", rec.channel)
	}
	var decoded Envelope
	if err := json.Unmarshal([]byte(rec.payload.(string)), &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Type != EventStockUpdated {
		t.Fatalf("unexpected type %q", decoded.Type)
	}
}

func TestHubSinkBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	if err := NewHubSink(hub).Publish(context.Background(), Envelope{Type: EventReservationUpdated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if env := <-ch; env.Type != EventReservationUpdated {
		t.Fatalf("unexpected type %q", env.Type)
	}
}
