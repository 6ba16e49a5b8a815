package eventbus

import (
	"sync"
	"sync/atomic"
)

// Token identifies one subscription. The zero Token never matches a
// real subscription.
type Token uint64

var nextToken atomic.Uint64

func newToken() Token {
	return Token(nextToken.Add(1))
}

// Bus is a typed publish/subscribe channel. A Bus[T] is safe for
// concurrent Subscribe/Unsubscribe/Publish from multiple goroutines; a
// Publish call fans out synchronously to every subscriber registered at
// the time it is called.
type Bus[T any] struct {
	mu   sync.RWMutex
	subs map[Token]func(T)
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[Token]func(T))}
}

// Subscribe registers fn and returns the Token that unsubscribes it.
func (b *Bus[T]) Subscribe(fn func(T)) Token {
	tok := newToken()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[tok] = fn
	return tok
}

// Unsubscribe removes the callback registered under tok, if any.
func (b *Bus[T]) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, tok)
}

// Publish calls every currently-subscribed callback with event, in no
// particular order. Callbacks are snapshotted under the lock and
// invoked outside it, so a callback that subscribes or unsubscribes
// does not deadlock.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	callbacks := make([]func(T), 0, len(b.subs))
	for _, fn := range b.subs {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(event)
	}
}

// Len reports the number of active subscriptions, for diagnostics and
// tests.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
