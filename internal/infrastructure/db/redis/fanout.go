package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/api/metrics"
	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

const (
	DefaultChannel = "careneighbour:notifications"

	minResubscribe = 500 * time.Millisecond
	maxResubscribe = 30 * time.Second
)

// PubSubClient is the part of *redis.Client the fan-out uses.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// envelope is the message published for every notification.
// Format: {"userId": 1, "type": "new-request", "payload": {...}}
type envelope struct {
	UserID  int64            `json:"userId"`
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

// Fanout publishes notifications on a Redis channel so every instance can
// deliver them to the connections it holds. While this instance is not
// subscribed, notifications go straight to local connections.
type Fanout struct {
	client  PubSubClient
	channel string
	local   ports.Notifier
	log     zerolog.Logger

	subscribed atomic.Bool
	retryMin   time.Duration
	retryMax   time.Duration
}

// NewFanout wraps client. local receives the messages read back by Run.
func NewFanout(client PubSubClient, channel string, local ports.Notifier, log zerolog.Logger) *Fanout {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Fanout{
		client:   client,
		channel:  channel,
		local:    local,
		log:      log.With().Str("component", "fanout").Logger(),
		retryMin: minResubscribe,
		retryMax: maxResubscribe,
	}
}

// Subscribed reports whether Run currently holds a live subscription.
func (f *Fanout) Subscribed() bool { return f.subscribed.Load() }

// Send implements ports.Notifier. When the instance is not subscribed or the
// publish fails the event is offered to local connections.
func (f *Fanout) Send(ctx context.Context, userID int64, event domain.EventType, payload any) {
	if !f.subscribed.Load() {
		f.local.Send(ctx, userID, event, payload)
		return
	}

	msg, err := encodeEnvelope(userID, event, payload)
	if err != nil {
		f.log.Warn().Err(err).Str("type", string(event)).Msg("encode notification failed")
		return
	}

	if err := f.client.Publish(ctx, f.channel, msg).Err(); err != nil {
		metrics.FanoutPublishErrorsTotal.Inc()
		f.log.Warn().Err(err).Int64("user_id", userID).Str("type", string(event)).Msg("publish failed, delivering locally")
		f.local.Send(ctx, userID, event, payload)
	}
}

// Run keeps a subscription to the channel and hands each message to the local
// notifier until ctx is cancelled. A lost subscription is retried with
// exponential backoff.
func (f *Fanout) Run(ctx context.Context) {
	wait := f.retryMin
	for {
		received, err := f.listen(ctx)
		f.setSubscribed(false)
		if ctx.Err() != nil {
			return
		}
		if received {
			wait = f.retryMin
		}

		f.log.Warn().Err(err).Dur("retry_in", wait).Msg("fan-out subscription lost")
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait = min(wait*2, f.retryMax)
	}
}

// listen subscribes once and pumps messages until the subscription ends.
// subscribed is true when the subscription was confirmed.
func (f *Fanout) listen(ctx context.Context) (subscribed bool, err error) {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}
	f.setSubscribed(true)
	f.log.Info().Str("channel", f.channel).Msg("fan-out subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("subscription closed")
			}
			env, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				f.log.Warn().Err(err).Msg("invalid fan-out message")
				continue
			}
			f.local.Send(ctx, env.UserID, env.Type, env.Payload)
		}
	}
}

func (f *Fanout) setSubscribed(v bool) {
	f.subscribed.Store(v)
	if v {
		metrics.FanoutSubscribed.Set(1)
	} else {
		metrics.FanoutSubscribed.Set(0)
	}
}

func encodeEnvelope(userID int64, event domain.EventType, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(envelope{UserID: userID, Type: event, Payload: body})
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, err
	}
	if env.UserID == 0 || env.Type == "" {
		return envelope{}, errors.New("envelope missing userId or type")
	}
	return env, nil
}
