package executor

import (
	"context"
	"sync"
)

// ChannelStream adapts a channel of payloads to an EventStream. An error
// received from the channel is returned from Next as a source error. Close
// runs cleanup once; the channel itself belongs to the producer.
type ChannelStream struct {
	ch      <-chan any
	cleanup func()
	once    sync.Once
	closed  chan struct{}
}

func NewChannelStream(ch <-chan any, cleanup func()) *ChannelStream {
	return &ChannelStream{ch: ch, cleanup: cleanup, closed: make(chan struct{})}
}

func (s *ChannelStream) Next(ctx context.Context) (any, bool, error) {
	select {
	case <-s.closed:
		return nil, true, nil
	default:
	}
	select {
	case v, ok := <-s.ch:
		if !ok {
			return nil, true, nil
		}
		if err, isErr := v.(error); isErr {
			return nil, false, err
		}
		return v, false, nil
	case <-s.closed:
		return nil, true, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (s *ChannelStream) Close(context.Context) (any, bool, error) {
	s.once.Do(func() {
		close(s.closed)
		if s.cleanup != nil {
			s.cleanup()
		}
	})
	return nil, true, nil
}

// asEventStream accepts an EventStream or a channel of payloads.
func asEventStream(v any) (EventStream, bool) {
	switch s := v.(type) {
	case EventStream:
		if isNullish(s) {
			return nil, false
		}
		return s, true
	case <-chan any:
		return NewChannelStream(s, nil), s != nil
	case chan any:
		return NewChannelStream(s, nil), s != nil
	}
	return nil, false
}
