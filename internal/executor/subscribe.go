package executor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"
)

// CreateSourceEventStream resolves the subscription root field and returns
// its event stream. Setup failures come back as an errors-only result.
func (e *Executor) CreateSourceEventStream(ctx context.Context, p Params) (EventStream, *ExecutionResult, error) {
	ec, errs, err := e.buildExecutionContext(p)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, &ExecutionResult{Errors: errs, DataOmitted: true}, nil
	}
	stream, _, gqlErr := ec.createSourceEventStream(ctx)
	if gqlErr != nil {
		return nil, &ExecutionResult{Errors: []*GraphQLError{gqlErr}, DataOmitted: true}, nil
	}
	return stream, nil, nil
}

// Subscribe returns a stream with one execution result per source event.
// Each event is executed with the event as root value; variables are coerced
// once for the whole subscription.
func (e *Executor) Subscribe(ctx context.Context, p Params) (*MappedStream[*ExecutionResult], *ExecutionResult, error) {
	ec, errs, err := e.buildExecutionContext(p)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, &ExecutionResult{Errors: errs, DataOmitted: true}, nil
	}
	source, fieldName, gqlErr := ec.createSourceEventStream(ctx)
	if gqlErr != nil {
		return nil, &ExecutionResult{Errors: []*GraphQLError{gqlErr}, DataOmitted: true}, nil
	}

	ctx, id := reqid.Ensure(ctx)
	var count atomic.Int64
	mapper := func(ctx context.Context, payload any) (*ExecutionResult, error) {
		start := time.Now()
		result := ec.withRoot(payload).executeOperation(ctx)
		count.Add(1)
		eventbus.Publish(ctx, events.SubscriptionEvent{
			SubscriptionID: id,
			Errors:         len(result.Errors),
			Duration:       time.Since(start),
		})
		return result, nil
	}
	onError := func(_ context.Context, err error) (*ExecutionResult, error) {
		var gqlErr *GraphQLError
		if errors.As(err, &gqlErr) {
			return &ExecutionResult{Errors: []*GraphQLError{gqlErr}, DataOmitted: true}, nil
		}
		return nil, err
	}

	stream := MapEventStream(source, mapper, onError)
	stream.onClosed = func() {
		eventbus.Publish(ctx, events.SubscriptionStop{SubscriptionID: id, Events: count.Load()})
	}
	eventbus.Publish(ctx, events.SubscriptionStart{
		SubscriptionID: id,
		OperationName:  ec.operation.Name,
		Field:          fieldName,
	})
	return stream, nil, nil
}

// createSourceEventStream calls the subscriber of the first root field.
func (ec *executionContext) createSourceEventStream(ctx context.Context) (EventStream, string, *GraphQLError) {
	rootType := ec.schema.GetSubscriptionType()
	if rootType == nil {
		return nil, "", newError("Schema is not configured for subscriptions.", ec.operation.Position)
	}

	fields, err := ec.collectFields(rootType, ec.operation.SelectionSet)
	if err != nil {
		return nil, "", locatedError(err, nil, nil)
	}
	groups := fields.orderedFields()
	if len(groups) == 0 {
		return nil, "", newError("Subscription operation must select exactly one field.", ec.operation.Position)
	}
	group := groups[0]
	node := group.Fields[0]

	fieldDef := rootType.Field(node.Name)
	if fieldDef == nil {
		return nil, "", newError(fmt.Sprintf("The subscription field \"%s\" is not defined.", node.Name), node.Position)
	}

	path := (*ResponsePath)(nil).Add(group.ResponseName, rootType.Name)
	info := ec.buildResolveInfo(fieldDef, group.Fields, rootType, path)

	args, err := CoerceArgumentValues(ec.schema, fieldDef.Arguments, node.Arguments, ec.variableValues)
	if err != nil {
		return nil, "", locatedError(err, group.Fields, path)
	}

	result, err := ec.callSubscriber(ctx, ec.rootValue, args, info)
	if err == nil {
		if f, ok := result.(*Future); ok {
			if f == nil {
				result = nil
			} else {
				result, err = f.Await(ctx)
			}
		}
	}
	if err == nil {
		if resultErr, ok := result.(error); ok && !isNullish(resultErr) {
			err = resultErr
		}
	}
	if err != nil {
		return nil, "", locatedError(err, group.Fields, path)
	}

	stream, ok := asEventStream(result)
	if !ok {
		return nil, "", locatedError(&GraphQLError{
			Message: fmt.Sprintf("Subscription field must return EventStream. Received: %s.", inspect(result)),
		}, group.Fields, path)
	}
	return stream, fieldDef.Name, nil
}

func (ec *executionContext) callSubscriber(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, recoveredError(r)
		}
	}()
	return ec.runtime.SubscribeField(ctx, source, args, info)
}
