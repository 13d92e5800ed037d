package executor

import (
	"context"

	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
)

// Runtime defines the host integration surface used by the Executor: field
// resolution, subscription source resolution and abstract type resolution.
//
// General contract
//   - Errors returned from any method are converted into located GraphQL errors.
//     If the field's return type is Non-Null, the Executor propagates the null
//     up to the nearest nullable ancestor.
//   - The Executor calls these methods concurrently for sibling fields whose
//     completion may block, so implementations must be concurrency-safe.
//   - Implementations must not mutate source or args values.
//
// Resolved values
//   - ResolveField may return a plain value, an error value, or a *Future.
//     A plain value is treated as an already settled future. Return (nil, nil)
//     to produce a GraphQL null for nullable fields.
//   - Lists may be any slice, array or iter.Seq[any]. Items may be *Futures.
//
// Subscriptions
//   - SubscribeField is called once for the root field of a subscription and
//     must return an EventStream (or a receive-only channel of payloads).
//
// Abstract types
//   - ResolveType must return the concrete object type name of value for the
//     interface or union abstractType. Return "" when the value cannot be
//     resolved; the Executor reports the failure. ResolveType is called
//     inline during completion and must not block; it cannot return a Future.
type Runtime interface {
	ResolveField(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error)
	SubscribeField(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error)
	ResolveType(ctx context.Context, value any, info *ResolveInfo, abstractType *schema.Type) (string, error)
}

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	FieldName      string
	FieldNodes     []*ast.Field
	ReturnType     *schema.TypeRef
	ParentType     *schema.Type
	Path           *ResponsePath
	Schema         *schema.Schema
	Fragments      map[string]*ast.FragmentDefinition
	RootValue      any
	Operation      *ast.OperationDefinition
	VariableValues map[string]any
	ContextValue   any
}

// FieldResolveFn resolves one field of one object.
type FieldResolveFn func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error)

// TypeResolveFn names the concrete object type of an abstract value.
type TypeResolveFn func(ctx context.Context, value any, info *ResolveInfo) (string, error)

// ResolverMap is a Runtime backed by resolver functions keyed by
// "Type.field". Fields without a resolver use DefaultFieldResolver; abstract
// types without a type resolver use the schema type's ResolveType hook and
// then DefaultTypeResolver.
type ResolverMap struct {
	Fields      map[string]FieldResolveFn
	Subscribers map[string]FieldResolveFn
	Types       map[string]TypeResolveFn
}

func NewResolverMap() *ResolverMap {
	return &ResolverMap{
		Fields:      make(map[string]FieldResolveFn),
		Subscribers: make(map[string]FieldResolveFn),
		Types:       make(map[string]TypeResolveFn),
	}
}

// Field registers the resolver of typeName.fieldName.
func (m *ResolverMap) Field(typeName, fieldName string, fn FieldResolveFn) *ResolverMap {
	if m.Fields == nil {
		m.Fields = make(map[string]FieldResolveFn)
	}
	m.Fields[typeName+"."+fieldName] = fn
	return m
}

// Subscriber registers the source stream resolver of a subscription root field.
func (m *ResolverMap) Subscriber(typeName, fieldName string, fn FieldResolveFn) *ResolverMap {
	if m.Subscribers == nil {
		m.Subscribers = make(map[string]FieldResolveFn)
	}
	m.Subscribers[typeName+"."+fieldName] = fn
	return m
}

// TypeResolver registers the type resolver of an interface or union.
func (m *ResolverMap) TypeResolver(typeName string, fn TypeResolveFn) *ResolverMap {
	if m.Types == nil {
		m.Types = make(map[string]TypeResolveFn)
	}
	m.Types[typeName] = fn
	return m
}

func (m *ResolverMap) ResolveField(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	if fn, ok := m.Fields[info.ParentType.Name+"."+info.FieldName]; ok {
		return fn(ctx, source, args, info)
	}
	return DefaultFieldResolver(ctx, source, args, info)
}

func (m *ResolverMap) SubscribeField(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	if fn, ok := m.Subscribers[info.ParentType.Name+"."+info.FieldName]; ok {
		return fn(ctx, source, args, info)
	}
	return DefaultFieldResolver(ctx, source, args, info)
}

func (m *ResolverMap) ResolveType(ctx context.Context, value any, info *ResolveInfo, abstractType *schema.Type) (string, error) {
	if fn, ok := m.Types[abstractType.Name]; ok {
		return fn(ctx, value, info)
	}
	if abstractType.ResolveType != nil {
		return abstractType.ResolveType(ctx, value)
	}
	return DefaultTypeResolver(ctx, value, info, abstractType)
}
