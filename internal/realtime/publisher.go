package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/logger"
	"github.com/angelmondragon/medfinder-backend/pkg/metrics"
)

const (
	resultPublished = "published"
	resultDropped   = "dropped"
	resultFailed    = "failed"

	drainTimeout = 2 * time.Second
)

// Sink delivers an envelope to its audience.
type Sink interface {
	Publish(ctx context.Context, env Envelope) error
}

type channelPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisSink publishes envelopes to a redis channel so every API instance can
// relay them to its own stream clients.
type RedisSink struct {
	client  channelPublisher
	channel string
}

func NewRedisSink(client channelPublisher, channel string) (*RedisSink, error) {
	if client == nil {
		return nil, fmt.Errorf("redis publisher required")
	}
	if channel == "" {
		return nil, fmt.Errorf("redis channel required")
	}
	return &RedisSink{client: client, channel: channel}, nil
}

func (s *RedisSink) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return s.client.Publish(ctx, s.channel, string(payload))
}

// HubSink broadcasts straight to the in-process hub. Used when redis is not configured.
type HubSink struct {
	hub *Hub
}

func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Publish(_ context.Context, env Envelope) error {
	s.hub.Broadcast(env)
	return nil
}

// Publisher is the asynchronous Notifier used by the ledger. Events are
// queued without blocking and delivered by Run; a full queue drops the event.
type Publisher struct {
	sink    Sink
	logg    *logger.Logger
	metrics *metrics.LedgerMetrics
	queue   chan Envelope
	timeout time.Duration
	now     func() time.Time
}

// NewPublisher builds a Publisher with a bounded queue.
func NewPublisher(sink Sink, logg *logger.Logger, m *metrics.LedgerMetrics, queueSize int, timeout time.Duration) (*Publisher, error) {
	if sink == nil {
		return nil, fmt.Errorf("realtime sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if queueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{
		sink:    sink,
		logg:    logg,
		metrics: m,
		queue:   make(chan Envelope, queueSize),
		timeout: timeout,
		now:     time.Now,
	}, nil
}

func (p *Publisher) StockUpdated(ctx context.Context, event StockUpdatedEvent) {
	p.enqueue(ctx, EventStockUpdated, event)
}

func (p *Publisher) ReservationUpdated(ctx context.Context, event ReservationUpdatedEvent) {
	p.enqueue(ctx, EventReservationUpdated, event)
}

func (p *Publisher) enqueue(ctx context.Context, eventType string, payload any) {
	ctx = p.logg.WithField(ctx, "event_type", eventType)

	env, err := NewEnvelope(eventType, payload, p.now())
	if err != nil {
		p.metrics.IncEvent(eventType, resultFailed)
		p.logg.Error(ctx, "realtime.encode_failed", err)
		return
	}

	select {
	case p.queue <- env:
	default:
		p.metrics.IncEvent(eventType, resultDropped)
		p.logg.Warn(ctx, "realtime.queue_full_event_dropped")
	}
}

// Run delivers queued envelopes until ctx is cancelled, then flushes what is
// left in the queue with a short deadline.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case env := <-p.queue:
			p.deliver(ctx, env)
		}
	}
}

func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case env := <-p.queue:
			p.deliver(ctx, env)
		default:
			return
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, env Envelope) {
	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.sink.Publish(sendCtx, env); err != nil {
		p.metrics.IncEvent(env.Type, resultFailed)
		p.logg.Error(p.logg.WithField(ctx, "event_type", env.Type), "realtime.publish_failed", err)
		return
	}
	p.metrics.IncEvent(env.Type, resultPublished)
}
