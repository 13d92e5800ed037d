package executor

import (
	"context"
	"sync"
)

// EventStream is a pull-based sequence of values. Next returns the next
// value, or done once the sequence is exhausted. Close asks the stream to
// release its resources; it may hand back one more value produced by that
// cleanup, in which case done is false and Next drains the rest.
type EventStream interface {
	Next(ctx context.Context) (value any, done bool, err error)
	Close(ctx context.Context) (value any, done bool, err error)
}

// EventStreamThrower is implemented by streams that can react to a failure
// injected by their consumer.
type EventStreamThrower interface {
	Throw(ctx context.Context, err error) (value any, done bool, err2 error)
}

type streamState int

const (
	streamActive streamState = iota
	streamClosing
	streamClosed
)

// MappedStream applies a mapper to every value of a source stream.
type MappedStream[T any] struct {
	source  EventStream
	mapper  func(context.Context, any) (T, error)
	onError func(context.Context, error) (T, error)

	mu       sync.Mutex
	state    streamState
	onClosed func()
}

// MapEventStream returns a stream of mapper(v) for every value v of source.
// Source errors go through onError when it is set and are returned as they
// are otherwise. A mapper or onError failure closes the source before the
// failure is returned.
func MapEventStream[T any](source EventStream, mapper func(context.Context, any) (T, error), onError func(context.Context, error) (T, error)) *MappedStream[T] {
	return &MappedStream[T]{source: source, mapper: mapper, onError: onError}
}

// Next pulls one value from the source. Once the source has reported done,
// Next reports done without touching it again.
func (s *MappedStream[T]) Next(ctx context.Context) (T, bool, error) {
	if s.currentState() == streamClosed {
		var zero T
		return zero, true, nil
	}
	value, done, err := s.source.Next(ctx)
	return s.mapResult(ctx, value, done, err)
}

// Close forwards to the source's cleanup. A value the cleanup produces is
// mapped like any other.
func (s *MappedStream[T]) Close(ctx context.Context) (T, bool, error) {
	s.mu.Lock()
	if s.state == streamClosed {
		s.mu.Unlock()
		var zero T
		return zero, true, nil
	}
	s.state = streamClosing
	s.mu.Unlock()

	value, done, err := s.source.Close(ctx)
	return s.mapResult(ctx, value, done, err)
}

// Throw hands err to the source when it implements EventStreamThrower.
// Otherwise the source is closed and err is returned.
func (s *MappedStream[T]) Throw(ctx context.Context, err error) (T, bool, error) {
	if s.currentState() == streamClosed {
		var zero T
		return zero, true, err
	}
	if t, ok := s.source.(EventStreamThrower); ok {
		value, done, terr := t.Throw(ctx, err)
		return s.mapResult(ctx, value, done, terr)
	}
	return s.abruptClose(ctx, err)
}

// Closed reports whether the stream is exhausted.
func (s *MappedStream[T]) Closed() bool {
	return s.currentState() == streamClosed
}

func (s *MappedStream[T]) mapResult(ctx context.Context, value any, done bool, err error) (T, bool, error) {
	var zero T
	if err != nil {
		if s.onError == nil {
			return zero, false, err
		}
		mapped, herr := s.onError(ctx, err)
		if herr != nil {
			return s.abruptClose(ctx, herr)
		}
		return mapped, false, nil
	}
	if done {
		s.finish()
		return zero, true, nil
	}
	mapped, merr := s.mapper(ctx, value)
	if merr != nil {
		return s.abruptClose(ctx, merr)
	}
	return mapped, false, nil
}

// abruptClose closes the source, ignoring whatever the cleanup yields, and
// returns err with done set.
func (s *MappedStream[T]) abruptClose(ctx context.Context, err error) (T, bool, error) {
	var zero T
	if s.finish() {
		_, _, _ = s.source.Close(ctx)
	}
	return zero, true, err
}

// finish moves the stream to its final state. It reports whether this call
// made the transition.
func (s *MappedStream[T]) finish() bool {
	s.mu.Lock()
	if s.state == streamClosed {
		s.mu.Unlock()
		return false
	}
	s.state = streamClosed
	onClosed := s.onClosed
	s.mu.Unlock()
	if onClosed != nil {
		onClosed()
	}
	return true
}

func (s *MappedStream[T]) currentState() streamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
