package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/medfinder-backend/pkg/logger"
)

type channelSubscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
}

// Relay forwards envelopes from the shared redis channel into the local hub.
type Relay struct {
	sub        channelSubscriber
	channel    string
	hub        *Hub
	logg       *logger.Logger
	retryDelay time.Duration
}

func NewRelay(sub channelSubscriber, channel string, hub *Hub, logg *logger.Logger) (*Relay, error) {
	if sub == nil {
		return nil, fmt.Errorf("redis subscriber required")
	}
	if channel == "" {
		return nil, fmt.Errorf("redis channel required")
	}
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Relay{
		sub:        sub,
		channel:    channel,
		hub:        hub,
		logg:       logg,
		retryDelay: time.Second,
	}, nil
}

// Run subscribes and relays until ctx is cancelled, resubscribing whenever
// the subscription drops.
func (r *Relay) Run(ctx context.Context) error {
	ctx = r.logg.WithField(ctx, "channel", r.channel)
	for {
		msgs, err := r.sub.Subscribe(ctx, r.channel)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logg.Error(ctx, "realtime.subscribe_failed", err)
		} else {
			r.logg.Info(ctx, "realtime.relay_subscribed")
			r.forward(ctx, msgs)
		}

		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *Relay) forward(ctx context.Context, msgs <-chan string) {
	for payload := range msgs {
		var env Envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			r.logg.Warn(ctx, "realtime.relay_invalid_payload")
			continue
		}
		if env.Type == "" {
			r.logg.Warn(ctx, "realtime.relay_missing_type")
			continue
		}
		r.hub.Broadcast(env)
	}
}
