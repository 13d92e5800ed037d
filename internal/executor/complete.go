package executor

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"
)

var typenameField = schema.NewField("__typename", "The name of the current Object type at runtime.",
	schema.NonNullType(schema.NamedType("String")))

// fieldRun is one field group of one object between resolution and
// completion.
type fieldRun struct {
	key        string
	nodes      []*ast.Field
	returnType *schema.TypeRef
	info       *ResolveInfo
	path       *ResponsePath
	result     any
	err        error
}

// executeFields resolves and completes the field groups of one object. All
// resolvers of the object are called in selection order before any value is
// completed; completions that may block run concurrently and are joined
// before the object is built. With serial set, each field is resolved and
// completed before the next one starts.
//
// A returned error is a non-null violation the caller must propagate.
func (ec *executionContext) executeFields(ctx context.Context, parentType *schema.Type, source any, path *ResponsePath, fields *collectedFieldMap, serial bool) (*OrderedMap, error) {
	groups := fields.orderedFields()
	runs := make([]*fieldRun, len(groups))
	values := make([]any, len(groups))

	var err error
	if serial || ec.sync {
		err = join(len(groups), true, nil, func(i int) (any, error) {
			runs[i] = ec.resolveField(ctx, parentType, source, groups[i], path)
			if runs[i] == nil {
				return nil, nil
			}
			return ec.completeField(ctx, runs[i])
		}, values)
	} else {
		for i, group := range groups {
			runs[i] = ec.resolveField(ctx, parentType, source, group, path)
		}
		err = join(len(groups), false, func(i int) bool {
			r := runs[i]
			return r != nil && r.err == nil && ec.mayBlock(r.result, r.returnType)
		}, func(i int) (any, error) {
			if runs[i] == nil {
				return nil, nil
			}
			return ec.completeField(ctx, runs[i])
		}, values)
	}
	if err != nil {
		return nil, err
	}

	out := NewOrderedMap(len(groups))
	for i, r := range runs {
		if r == nil {
			continue
		}
		out.Set(r.key, values[i])
	}
	return out, nil
}

// join runs complete for 0..n-1 and stores the values in out. Indices for
// which mayBlock reports true run on their own goroutines; the rest run
// inline. An inline error stops further launches. A goroutine error never
// does, so every sibling launched or not yet reached keeps running and logs
// its own errors. join always waits for the goroutines it started and
// returns the inline error first, else the first goroutine error.
func join(n int, serial bool, mayBlock func(int) bool, complete func(int) (any, error), out []any) error {
	var (
		g        errgroup.Group
		firstErr error
	)
	for i := 0; i < n; i++ {
		if serial || !mayBlock(i) {
			v, err := complete(i)
			if err != nil {
				firstErr = err
				break
			}
			out[i] = v
			continue
		}
		g.Go(func() error {
			v, err := complete(i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// mayBlock reports whether completing value against t may wait on a Future.
func (ec *executionContext) mayBlock(value any, t *schema.TypeRef) bool {
	if f, ok := value.(*Future); ok && f != nil && !f.Settled() {
		return true
	}
	if t.IsList() {
		return true
	}
	named := ec.schema.GetType(t.GetNamedType())
	return named == nil || !named.IsLeaf()
}

// resolveField calls the resolver of one field group. It returns nil for
// fields the parent type does not define; those are left out of the result.
func (ec *executionContext) resolveField(ctx context.Context, parentType *schema.Type, source any, group collectedField, path *ResponsePath) *fieldRun {
	node := group.Fields[0]
	fieldDef := parentType.Field(node.Name)
	if node.Name == typenameField.Name {
		fieldDef = typenameField
	}
	if fieldDef == nil {
		return nil
	}

	fieldPath := path.Add(group.ResponseName, parentType.Name)
	run := &fieldRun{
		key:        group.ResponseName,
		nodes:      group.Fields,
		returnType: fieldDef.Type,
		path:       fieldPath,
		info:       ec.buildResolveInfo(fieldDef, group.Fields, parentType, fieldPath),
	}
	if fieldDef == typenameField {
		run.result = parentType.Name
		return run
	}

	args, err := CoerceArgumentValues(ec.schema, fieldDef.Arguments, node.Arguments, ec.variableValues)
	if err != nil {
		run.err = err
		return run
	}
	run.result, run.err = ec.callResolver(ctx, source, args, run.info)
	return run
}

func (ec *executionContext) buildResolveInfo(fieldDef *schema.Field, nodes []*ast.Field, parentType *schema.Type, path *ResponsePath) *ResolveInfo {
	return &ResolveInfo{
		FieldName:      fieldDef.Name,
		FieldNodes:     nodes,
		ReturnType:     fieldDef.Type,
		ParentType:     parentType,
		Path:           path,
		Schema:         ec.schema,
		Fragments:      ec.fragments,
		RootValue:      ec.rootValue,
		Operation:      ec.operation,
		VariableValues: ec.variableValues,
		ContextValue:   ec.contextValue,
	}
}

func (ec *executionContext) callResolver(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, recoveredError(r)
		}
	}()
	return ec.runtime.ResolveField(ctx, source, args, info)
}

// completeField completes a resolved field, absorbing its error when the
// field is nullable.
func (ec *executionContext) completeField(ctx context.Context, r *fieldRun) (completed any, err error) {
	defer func() {
		if p := recover(); p != nil {
			completed, err = ec.handleFieldError(ctx, recoveredError(p), r.nodes, r.path, r.returnType)
		}
	}()
	if r.err != nil {
		return ec.handleFieldError(ctx, r.err, r.nodes, r.path, r.returnType)
	}
	completed, err = ec.completeValue(ctx, r.returnType, r.nodes, r.info, r.path, r.result)
	if err != nil {
		return ec.handleFieldError(ctx, err, r.nodes, r.path, r.returnType)
	}
	return completed, nil
}

// handleFieldError locates err at path. Non-null positions hand it to their
// parent; nullable ones log it and become null.
func (ec *executionContext) handleFieldError(ctx context.Context, err error, nodes []*ast.Field, path *ResponsePath, returnType *schema.TypeRef) (any, error) {
	located := locatedError(err, nodes, path)
	if returnType.IsNonNull() {
		return nil, located
	}
	ec.addError(located)
	eventbus.Publish(ctx, events.FieldError{Path: path.String(), Message: located.Message, Err: located.Err})
	return nil, nil
}

// settle waits for a Future. In synchronous mode an unsettled Future marks
// the execution as suspended and reads as null.
func (ec *executionContext) settle(ctx context.Context, value any) (any, error) {
	f, ok := value.(*Future)
	if !ok {
		return value, nil
	}
	if f == nil {
		return nil, nil
	}
	if ec.sync && !f.Settled() {
		ec.suspended.Store(true)
		return nil, nil
	}
	return f.Await(ctx)
}

func (ec *executionContext) completeValue(ctx context.Context, returnType *schema.TypeRef, nodes []*ast.Field, info *ResolveInfo, path *ResponsePath, result any) (any, error) {
	result, err := ec.settle(ctx, result)
	if err != nil {
		return nil, err
	}
	if err, ok := result.(error); ok && !isNullish(err) {
		return nil, err
	}

	if returnType.IsNonNull() {
		completed, err := ec.completeValue(ctx, returnType.OfType, nodes, info, path, result)
		if err != nil {
			return nil, err
		}
		if completed == nil {
			return nil, &GraphQLError{Message: fmt.Sprintf(
				"Cannot return null for non-nullable field %s.%s.", info.ParentType.Name, info.FieldName)}
		}
		return completed, nil
	}

	if isNullish(result) {
		return nil, nil
	}

	if returnType.Kind == schema.TypeRefKindList {
		return ec.completeListValue(ctx, returnType, nodes, info, path, result)
	}

	named := ec.schema.GetType(returnType.Named)
	if named == nil {
		return nil, &GraphQLError{Message: fmt.Sprintf("Unknown type \"%s\".", returnType.Named)}
	}
	switch named.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		return completeLeafValue(named, result)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return ec.completeAbstractValue(ctx, named, nodes, info, path, result)
	case schema.TypeKindObject:
		return ec.completeObjectValue(ctx, named, nodes, info, path, result)
	default:
		return nil, &GraphQLError{Message: fmt.Sprintf("Cannot complete value of unexpected output type: \"%s\".", named.Name)}
	}
}

func (ec *executionContext) completeListValue(ctx context.Context, returnType *schema.TypeRef, nodes []*ast.Field, info *ResolveInfo, path *ResponsePath, result any) (any, error) {
	items, ok := listItems(result)
	if !ok {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Expected Iterable, but did not find one for field \"%s.%s\".", info.ParentType.Name, info.FieldName)}
	}

	itemType := returnType.OfType
	completed := make([]any, len(items))
	err := join(len(items), ec.sync, func(i int) bool {
		return ec.mayBlock(items[i], itemType)
	}, func(i int) (any, error) {
		return ec.completeListItem(ctx, itemType, nodes, info, path.Add(i, ""), items[i])
	}, completed)
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (ec *executionContext) completeListItem(ctx context.Context, itemType *schema.TypeRef, nodes []*ast.Field, info *ResolveInfo, path *ResponsePath, item any) (completed any, err error) {
	defer func() {
		if p := recover(); p != nil {
			completed, err = ec.handleFieldError(ctx, recoveredError(p), nodes, path, itemType)
		}
	}()
	completed, err = ec.completeValue(ctx, itemType, nodes, info, path, item)
	if err != nil {
		return ec.handleFieldError(ctx, err, nodes, path, itemType)
	}
	return completed, nil
}

// listItems reads slices, arrays and iter.Seq sequences.
func listItems(result any) ([]any, bool) {
	switch v := result.(type) {
	case []any:
		return v, true
	case iter.Seq[any]:
		return collectSeq(v), true
	case func(yield func(any) bool):
		return collectSeq(v), true
	}
	rv := reflect.ValueOf(result)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}

func collectSeq(seq iter.Seq[any]) []any {
	var items []any
	for item := range seq {
		items = append(items, item)
	}
	return items
}

func completeLeafValue(t *schema.Type, result any) (any, error) {
	serialized, err := t.SerializeValue(result)
	if err != nil {
		return nil, err
	}
	if isNullish(serialized) {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Expected `%s.serialize(%s)` to return non-nullable value, returned: %s", t.Name, inspect(result), inspect(serialized))}
	}
	return serialized, nil
}

func (ec *executionContext) completeAbstractValue(ctx context.Context, abstractType *schema.Type, nodes []*ast.Field, info *ResolveInfo, path *ResponsePath, result any) (any, error) {
	typeName, err := ec.runtime.ResolveType(ctx, result, info, abstractType)
	if err != nil {
		return nil, err
	}
	runtimeType, err := ec.ensureValidRuntimeType(typeName, abstractType, info, result)
	if err != nil {
		return nil, err
	}
	return ec.completeObjectValue(ctx, runtimeType, nodes, info, path, result)
}

func (ec *executionContext) ensureValidRuntimeType(typeName string, abstractType *schema.Type, info *ResolveInfo, result any) (*schema.Type, error) {
	if typeName == "" {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Abstract type \"%s\" must resolve to an Object type at runtime for field \"%s.%s\". Either the \"%s\" type should provide a \"resolveType\" function or each possible type should provide an \"isTypeOf\" function.",
			abstractType.Name, info.ParentType.Name, info.FieldName, abstractType.Name)}
	}
	runtimeType := ec.schema.GetType(typeName)
	if runtimeType == nil {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Abstract type \"%s\" was resolved to a type \"%s\" that does not exist inside the schema.", abstractType.Name, typeName)}
	}
	if runtimeType.Kind != schema.TypeKindObject {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Abstract type \"%s\" was resolved to a non-object type \"%s\".", abstractType.Name, typeName)}
	}
	if !ec.schema.IsSubType(abstractType, runtimeType) {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Runtime Object type \"%s\" is not a possible type for \"%s\".", runtimeType.Name, abstractType.Name)}
	}
	return runtimeType, nil
}

func (ec *executionContext) completeObjectValue(ctx context.Context, objectType *schema.Type, nodes []*ast.Field, info *ResolveInfo, path *ResponsePath, result any) (any, error) {
	if objectType.IsTypeOf != nil && !objectType.IsTypeOf(result) {
		return nil, &GraphQLError{Message: fmt.Sprintf(
			"Expected value of type \"%s\" but got: %s.", objectType.Name, inspect(result))}
	}
	subfields, err := ec.collectSubfields(objectType, nodes)
	if err != nil {
		return nil, err
	}
	m, err := ec.executeFields(ctx, objectType, result, path, subfields, false)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
