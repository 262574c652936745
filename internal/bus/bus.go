// Package bus provides the internal pub/sub broker used to fan out
// storage-mutation and identity-change notifications to every open
// store. Two producers feed it: the external mutation watcher and the
// in-process mutation emitters (profile edits, login/logout).
package bus

import (
	"context"
	"sync"
)

// Event wraps a published payload.
type Event[T any] struct {
	Payload T
}

const subscriberBuffer = 16

// Broker is a minimal in-process broadcast bus. Publish never blocks:
// a subscriber that falls more than subscriberBuffer events behind
// loses the oldest ones, which is acceptable because every consumer
// reacts by reloading from storage rather than replaying events.
type Broker[T any] struct {
	mu   sync.Mutex
	subs map[chan Event[T]]struct{}
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{})}
}

// Subscribe registers a subscriber that receives events until ctx is
// done, at which point its channel is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	ch := make(chan Event[T], subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish delivers payload to every current subscriber.
func (b *Broker[T]) Publish(payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- Event[T]{Payload: payload}:
		default:
			// drop the oldest event to make room, then retry once
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- Event[T]{Payload: payload}:
			default:
			}
		}
	}
}
