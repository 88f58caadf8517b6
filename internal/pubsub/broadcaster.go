package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 16

// Broadcaster fans values out to every subscriber. Publishing never blocks:
// a subscriber that falls behind loses intermediate values, which is fine
// here because every publish carries a complete snapshot.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]chan T
	closed      bool
}

// New returns an empty broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subscribers: make(map[string]chan T)}
}

// Subscribe registers a subscriber and returns its channel plus an ID usable
// with Unsubscribe. The subscription is removed automatically when ctx is
// cancelled. Subscribing to a closed broadcaster yields a closed channel.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) (<-chan T, string) {
	id := uuid.NewString()
	ch := make(chan T, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, id
	}
	b.subscribers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.Unsubscribe(id)
	}()

	return ch, id
}

// Publish delivers value to every subscriber. Values are dropped for
// subscribers whose channels are full. Sends happen under the read lock so a
// concurrent Unsubscribe cannot close a channel mid-send.
func (b *Broadcaster[T]) Publish(value T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- value:
		default:
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(ch)
}

// Close closes every subscriber channel and rejects future subscriptions.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
