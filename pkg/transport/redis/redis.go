package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/notifier/pkg/transport"
)

// Transport delivers push payloads over redis pub/sub channels.
type Transport struct {
	client *redis.Client
	logger *zerolog.Logger

	mu   sync.Mutex
	subs []*subscription
}

type subscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

func NewTransport(config Config, logger *zerolog.Logger) (*Transport, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.RetryBackoff
	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Transport{
		client: client,
		logger: logger,
	}, nil
}

// Subscribe starts a receive loop on the given channel. The returned
// function tears the subscription down; it is safe to call more than once.
func (t *Transport) Subscribe(ctx context.Context, eventType string, handler transport.Handler) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := t.client.Subscribe(subCtx, eventType)

	// Force the SUBSCRIBE round-trip so a bad channel surfaces here.
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
	}

	sub := &subscription{pubsub: pubsub, cancel: cancel}
	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			default:
				msg, err := pubsub.ReceiveMessage(subCtx)
				if err != nil {
					continue
				}
				if err := handler([]byte(msg.Payload)); err != nil {
					t.logger.Error().Err(err).Str("event_type", eventType).Msg("push handler failed")
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			pubsub.Close()
		})
	}
	return unsubscribe, nil
}

// Publish sends a JSON-encoded message; used by tooling and tests.
func (t *Transport) Publish(ctx context.Context, eventType string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return t.client.Publish(ctx, eventType, payload).Err()
}

func (t *Transport) Close() error {
	t.mu.Lock()
	for _, sub := range t.subs {
		sub.cancel()
		sub.pubsub.Close()
	}
	t.subs = nil
	t.mu.Unlock()
	return t.client.Close()
}
