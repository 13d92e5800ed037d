package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	schema "github.com/hanpama/gqlengine/internal/schema"
)

// MockResolver resolves a single field; MockRuntime records every call made through it.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// CallKind identifies whether a call resolved a field or a subscription source.
const (
	CallKindResolve   = "resolve"
	CallKindSubscribe = "subscribe"
)

// NewMockValueResolver returns a MockResolver that always returns the provided value.
func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

// NewMockErrorResolver returns a MockResolver that always returns the provided error.
func NewMockErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// NewMockFutureResolver returns a MockResolver whose value arrives on a
// goroutine after release is closed.
func NewMockFutureResolver(val any, release <-chan struct{}) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return Go(ctx, func(ctx context.Context) (any, error) {
			select {
			case <-release:
				return val, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}), nil
	}
}

// Call represents a single resolver invocation record.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

// MockRuntime implements Runtime with a single resolver registry and a single call log.
// Fields without a resolver fall back to DefaultFieldResolver and are logged too.
type MockRuntime struct {
	mu          sync.Mutex
	resolvers   map[string]MockResolver
	subscribers map[string]MockResolver
	calls       []Call

	typeResolver func(value any) (string, error)
}

// NewMockRuntime creates a MockRuntime with the provided resolvers.
// The resolvers map keys are of the form "ObjectType.Field".
func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{
		resolvers:   make(map[string]MockResolver),
		subscribers: make(map[string]MockResolver),
		typeResolver: func(value any) (string, error) {
			if m, ok := value.(map[string]any); ok {
				if typename, ok := m["__typename"].(string); ok {
					return typename, nil
				}
			}
			return "", fmt.Errorf("cannot resolve type")
		},
	}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

// SetResolver registers or updates a resolver for the given object type and field.
func (m *MockRuntime) SetResolver(objectType, field string, resolver MockResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvers[objectType+"."+field] = resolver
}

// SetSubscriber registers the source stream resolver of a subscription field.
func (m *MockRuntime) SetSubscriber(objectType, field string, resolver MockResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[objectType+"."+field] = resolver
}

func SetTypeResolver(r Runtime, f func(value any) (string, error)) {
	if mr, ok := r.(*MockRuntime); ok {
		mr.mu.Lock()
		mr.typeResolver = f
		mr.mu.Unlock()
	}
}

func (m *MockRuntime) ResolveField(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	return m.call(ctx, CallKindResolve, m.resolvers, source, args, info)
}

func (m *MockRuntime) SubscribeField(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	return m.call(ctx, CallKindSubscribe, m.subscribers, source, args, info)
}

func (m *MockRuntime) call(ctx context.Context, kind string, registry map[string]MockResolver, source any, args map[string]any, info *ResolveInfo) (any, error) {
	objectType := info.ParentType.Name
	m.mu.Lock()
	r := registry[objectType+"."+info.FieldName]
	m.calls = append(m.calls, Call{
		Kind:       kind,
		ObjectType: objectType,
		Field:      info.FieldName,
		Source:     source,
		Args:       args,
	})
	m.mu.Unlock()

	if r == nil {
		return DefaultFieldResolver(ctx, source, args, info)
	}
	return r(ctx, source, args)
}

// ResolveType implements Runtime.ResolveType
func (m *MockRuntime) ResolveType(ctx context.Context, value any, info *ResolveInfo, abstractType *schema.Type) (string, error) {
	m.mu.Lock()
	f := m.typeResolver
	m.mu.Unlock()
	if f == nil {
		return "", fmt.Errorf("type resolver not configured")
	}
	return f(value)
}

// GetCalls returns a copy of the recorded calls in order.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the recorded calls to "ObjectType.Field".
func (m *MockRuntime) CallsTo(key string) []Call {
	obj, fld := splitKey(key)
	var out []Call
	for _, c := range m.GetCalls() {
		if c.ObjectType == obj && c.Field == fld {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls (resolvers remain).
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Helpers
func splitKey(key string) (string, string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return key, ""
}
