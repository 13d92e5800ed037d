package executor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
)

var (
	ErrMissingSchema   = errors.New("executor: schema is required")
	ErrMissingDocument = errors.New("executor: document is required")
	// ErrNotSynchronous is returned by ExecuteSync when a resolver handed back
	// a Future that had not settled.
	ErrNotSynchronous = errors.New("executor: GraphQL execution failed to complete synchronously")
)

const defaultMaxVariableErrors = 50

// Params are the per-request inputs of an execution.
type Params struct {
	Document       *ast.QueryDocument
	OperationName  string
	VariableValues map[string]any
	RootValue      any
	ContextValue   any
}

// executionContext is the state shared by every field of one execution pass.
// Only the error log changes after construction.
type executionContext struct {
	schema         *schema.Schema
	runtime        Runtime
	fragments      map[string]*ast.FragmentDefinition
	operation      *ast.OperationDefinition
	rootValue      any
	contextValue   any
	variableValues map[string]any

	// sync makes every pending Future count as a suspension.
	sync      bool
	suspended atomic.Bool

	mu     sync.Mutex
	errors []*GraphQLError
}

func (ec *executionContext) addError(err *GraphQLError) {
	ec.mu.Lock()
	ec.errors = append(ec.errors, err)
	ec.mu.Unlock()
}

func (ec *executionContext) takeErrors() []*GraphQLError {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.errors
}

// withRoot copies the context for another pass over the same operation, as a
// subscription does for each event.
func (ec *executionContext) withRoot(rootValue any) *executionContext {
	return &executionContext{
		schema:         ec.schema,
		runtime:        ec.runtime,
		fragments:      ec.fragments,
		operation:      ec.operation,
		rootValue:      rootValue,
		contextValue:   ec.contextValue,
		variableValues: ec.variableValues,
		sync:           ec.sync,
	}
}

// buildExecutionContext selects the operation and coerces its variables. The
// returned errors belong in an errors-only response.
func (e *Executor) buildExecutionContext(p Params) (*executionContext, []*GraphQLError, error) {
	if e.schema == nil {
		return nil, nil, ErrMissingSchema
	}
	if p.Document == nil {
		return nil, nil, ErrMissingDocument
	}

	operation, gqlErr := selectOperation(p.Document, p.OperationName)
	if gqlErr != nil {
		return nil, []*GraphQLError{gqlErr}, nil
	}

	fragments := make(map[string]*ast.FragmentDefinition, len(p.Document.Fragments))
	for _, f := range p.Document.Fragments {
		fragments[f.Name] = f
	}

	inputs := p.VariableValues
	if inputs == nil {
		inputs = map[string]any{}
	}
	vars, errs := CoerceVariableValues(e.schema, operation.VariableDefinitions, inputs, e.maxVariableErrors)
	if len(errs) > 0 {
		return nil, errs, nil
	}

	return &executionContext{
		schema:         e.schema,
		runtime:        e.runtime,
		fragments:      fragments,
		operation:      operation,
		rootValue:      p.RootValue,
		contextValue:   p.ContextValue,
		variableValues: vars,
	}, nil, nil
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *GraphQLError) {
	if name == "" {
		switch len(doc.Operations) {
		case 0:
			return nil, &GraphQLError{Message: "Must provide an operation."}
		case 1:
			return doc.Operations[0], nil
		default:
			return nil, &GraphQLError{Message: "Must provide operation name if query contains multiple operations."}
		}
	}
	for _, op := range doc.Operations {
		if op.Name == name {
			return op, nil
		}
	}
	return nil, &GraphQLError{Message: fmt.Sprintf("Unknown operation named \"%s\".", name)}
}
