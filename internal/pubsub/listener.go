package pubsub

import "context"

// ContinuousListener wraps a broker subscription for consumers that process
// events one at a time, such as the sync engine's auth event loop.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener creates a new listener that subscribes to the broker.
// The subscription is automatically cleaned up when the context is cancelled.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx),
	}
}

// Next blocks until an event arrives, the context is cancelled, or the
// channel is closed. The second return value is false when no more events
// will be delivered.
func (l *ContinuousListener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		if !ok {
			return Event[T]{}, false
		}
		return event, true
	}
}

// Events exposes the underlying channel for select-based consumers.
func (l *ContinuousListener[T]) Events() <-chan Event[T] {
	return l.ch
}
