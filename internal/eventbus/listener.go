package eventbus

import (
	"context"
	"sync"
)

// Listener buffers the events of type T published after Listen until they
// are read with Next. Its Next/Close pair follows the executor's event stream
// shape, so a Listener can back a subscription field directly.
type Listener[T any] struct {
	mu          sync.Mutex
	queue       []T
	closed      bool
	signal      chan struct{}
	done        chan struct{}
	unsubscribe func()
}

// Listen subscribes a new Listener to the global bus.
func Listen[T any]() *Listener[T] {
	return ListenOn[T](global.Load())
}

// ListenOn subscribes a new Listener to b.
func ListenOn[T any](b *Bus) *Listener[T] {
	l := &Listener[T]{signal: make(chan struct{}, 1), done: make(chan struct{})}
	l.unsubscribe = SubscribeOn(b, func(_ context.Context, e T) { l.push(e) })
	return l
}

func (l *Listener[T]) push(e T) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, e)
	l.mu.Unlock()
	l.wake()
}

func (l *Listener[T]) wake() {
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Next blocks until an event is queued, the listener is closed or ctx is done.
func (l *Listener[T]) Next(ctx context.Context) (any, bool, error) {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			var zero T
			e := l.queue[0]
			l.queue[0] = zero
			l.queue = l.queue[1:]
			if len(l.queue) > 0 {
				l.wake()
			}
			l.mu.Unlock()
			return e, false, nil
		}
		if l.closed {
			l.mu.Unlock()
			return nil, true, nil
		}
		l.mu.Unlock()

		select {
		case <-l.signal:
		case <-l.done:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Close unregisters the listener and drops queued events.
func (l *Listener[T]) Close(context.Context) (any, bool, error) {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		l.queue = nil
		l.unsubscribe()
		close(l.done)
	}
	l.mu.Unlock()
	return nil, true, nil
}
