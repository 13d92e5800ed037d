package executor

import (
	"context"
	"sync"
)

// Future is a value that may not be available yet. Resolvers return one when
// they want their work to overlap with sibling fields.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

// NewFuture returns a pending future and the function that settles it. Only
// the first call to settle has an effect.
func NewFuture() (*Future, func(value any, err error)) {
	f := &Future{done: make(chan struct{})}
	return f, f.settle
}

// Go runs fn on its own goroutine and returns a future for its result. A
// panic in fn rejects the future.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f, settle := NewFuture()
	go func() {
		var (
			value any
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				err = recoveredError(r)
			}
			settle(value, err)
		}()
		value, err = fn(ctx)
	}()
	return f
}

// Resolved returns an already settled future holding value.
func Resolved(value any) *Future {
	f, settle := NewFuture()
	settle(value, nil)
	return f
}

// Rejected returns an already settled future holding err.
func Rejected(err error) *Future {
	f, settle := NewFuture()
	settle(nil, err)
	return f
}

func (f *Future) settle(value any, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

// Settled reports whether the future has a value or an error.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	if f.Settled() {
		return f.value, f.err
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &UnexpectedError{Value: r}
}
