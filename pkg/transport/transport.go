// Package transport defines the realtime push subscription consumed by the
// delivery engine. The engine owns neither the wire format nor delivery
// guarantees; a dropped message is simply never seen.
package transport

import "context"

// Handler receives one raw push payload. Errors are the handler's to log;
// the transport keeps delivering either way.
type Handler func(payload []byte) error

// Transport is a subscribe-only realtime connection.
type Transport interface {
	// Subscribe registers a handler for one event type and returns an
	// unsubscribe function. Handlers for a subscription are invoked
	// sequentially, in arrival order.
	Subscribe(ctx context.Context, eventType string, handler Handler) (func(), error)
	Close() error
}

// Publisher is the producing side, used by tooling and tests to inject
// events; the engine itself never publishes.
type Publisher interface {
	Publish(ctx context.Context, eventType string, message interface{}) error
}
