package executor

import (
	"context"
	"errors"
	"time"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
)

type Executor struct {
	runtime           Runtime
	schema            *schema.Schema
	maxVariableErrors int
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxVariableErrors bounds the number of variable coercion errors
// reported for one request. n <= 0 reports all of them.
func WithMaxVariableErrors(n int) Option {
	return func(e *Executor) { e.maxVariableErrors = n }
}

// NewExecutor returns an Executor for sch. A nil runtime resolves every field
// with DefaultFieldResolver.
func NewExecutor(runtime Runtime, sch *schema.Schema, opts ...Option) *Executor {
	if runtime == nil {
		runtime = NewResolverMap()
	}
	e := &Executor{runtime: runtime, schema: sch, maxVariableErrors: defaultMaxVariableErrors}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Schema() *schema.Schema { return e.schema }

// Execute runs the selected operation, waiting for every pending value.
// Only usage errors are returned as error; everything else is in the result.
func (e *Executor) Execute(ctx context.Context, p Params) (*ExecutionResult, error) {
	return e.execute(ctx, p, false)
}

// ExecuteSync runs the operation without waiting. It fails with
// ErrNotSynchronous if a resolver returned a Future that had not settled.
func (e *Executor) ExecuteSync(ctx context.Context, p Params) (*ExecutionResult, error) {
	return e.execute(ctx, p, true)
}

// ExecuteRequest is Execute with usage errors folded into the result.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *ast.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
) *ExecutionResult {
	result, err := e.Execute(ctx, Params{
		Document:       document,
		OperationName:  operationName,
		VariableValues: variableValues,
		RootValue:      rootValue,
	})
	if err != nil {
		return &ExecutionResult{Errors: []*GraphQLError{{Message: err.Error(), Err: err}}, DataOmitted: true}
	}
	return result
}

func (e *Executor) execute(ctx context.Context, p Params, sync bool) (*ExecutionResult, error) {
	ec, errs, err := e.buildExecutionContext(p)
	if err != nil {
		return nil, err
	}

	ctx, _ = reqid.Ensure(ctx)
	opName, opType := operationLabels(p, ec)
	start := time.Now()
	eventbus.Publish(ctx, events.ExecutionStart{OperationName: opName, OperationType: opType})

	var result *ExecutionResult
	if len(errs) > 0 {
		result = &ExecutionResult{Errors: errs, DataOmitted: true}
	} else {
		ec.sync = sync
		result = ec.executeOperation(ctx)
	}

	finish := events.ExecutionFinish{
		OperationName: opName,
		OperationType: opType,
		DataOmitted:   result.DataOmitted,
		Errors:        asErrors(result.Errors),
		Duration:      time.Since(start),
	}
	if ec != nil && ec.suspended.Load() {
		finish.Errors = append(finish.Errors, ErrNotSynchronous)
		eventbus.Publish(ctx, finish)
		return nil, ErrNotSynchronous
	}
	eventbus.Publish(ctx, finish)
	return result, nil
}

// executeOperation runs the root selection set. A failure that reaches the
// root nulls data.
func (ec *executionContext) executeOperation(ctx context.Context) *ExecutionResult {
	rootType, gqlErr := ec.rootType()
	if gqlErr != nil {
		ec.addError(gqlErr)
		return ec.buildResponse(nil)
	}

	fields, err := ec.collectFields(rootType, ec.operation.SelectionSet)
	if err != nil {
		ec.addError(locatedError(err, nil, nil))
		return ec.buildResponse(nil)
	}

	serial := ec.operation.Operation == ast.Mutation
	data, err := ec.executeFields(ctx, rootType, ec.rootValue, nil, fields, serial)
	if err != nil {
		ec.addError(locatedError(err, nil, nil))
		return ec.buildResponse(nil)
	}
	return ec.buildResponse(data)
}

func (ec *executionContext) rootType() (*schema.Type, *GraphQLError) {
	op := ec.operation
	switch op.Operation {
	case ast.Mutation:
		if t := ec.schema.GetMutationType(); t != nil {
			return t, nil
		}
		return nil, newError("Schema is not configured for mutations.", op.Position)
	case ast.Subscription:
		if t := ec.schema.GetSubscriptionType(); t != nil {
			return t, nil
		}
		return nil, newError("Schema is not configured for subscriptions.", op.Position)
	default:
		if t := ec.schema.GetQueryType(); t != nil {
			return t, nil
		}
		return nil, newError("Schema does not define the required query root type.", op.Position)
	}
}

func (ec *executionContext) buildResponse(data *OrderedMap) *ExecutionResult {
	return &ExecutionResult{Data: data, Errors: ec.takeErrors()}
}

func operationLabels(p Params, ec *executionContext) (name, typ string) {
	name = p.OperationName
	if ec != nil {
		name = ec.operation.Name
		typ = string(ec.operation.Operation)
	}
	return name, typ
}

func asErrors(errs []*GraphQLError) []error {
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, err := range errs {
		out[i] = err
	}
	return out
}

// IsUsageError reports whether err is one of the errors Execute returns
// instead of a result.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrMissingSchema) || errors.Is(err, ErrMissingDocument) || errors.Is(err, ErrNotSynchronous)
}
