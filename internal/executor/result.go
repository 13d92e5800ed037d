package executor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string              `json:"message"`
	Locations  []gqlerror.Location `json:"locations,omitempty"`
	Path       Path                `json:"path,omitempty"`
	Extensions map[string]any      `json:"extensions,omitempty"`

	// Nodes are the field nodes the error originated from.
	Nodes []*ast.Field `json:"-"`
	// Err is the original failure, if any.
	Err error `json:"-"`
}

func (e *GraphQLError) Error() string {
	return e.Message
}

func (e *GraphQLError) Unwrap() error {
	return e.Err
}

// newError builds an error located at the given AST positions.
func newError(message string, positions ...*ast.Position) *GraphQLError {
	return &GraphQLError{Message: message, Locations: locationsOf(positions...)}
}

func locationsOf(positions ...*ast.Position) []gqlerror.Location {
	var locs []gqlerror.Location
	for _, pos := range positions {
		if pos == nil {
			continue
		}
		locs = append(locs, gqlerror.Location{Line: pos.Line, Column: pos.Column})
	}
	return locs
}

func fieldLocations(fields []*ast.Field) []gqlerror.Location {
	positions := make([]*ast.Position, len(fields))
	for i, f := range fields {
		positions[i] = f.Position
	}
	return locationsOf(positions...)
}

// locatedError attaches field nodes and a path to err. Errors that already
// carry a path were located deeper in the tree and pass through unchanged.
func locatedError(err error, fields []*ast.Field, path *ResponsePath) *GraphQLError {
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		if gqlErr.Path != nil {
			return gqlErr
		}
		located := *gqlErr
		located.Path = path.AsPath()
		located.Nodes = fields
		if len(located.Locations) == 0 {
			located.Locations = fieldLocations(fields)
		}
		return &located
	}
	return &GraphQLError{
		Message:   err.Error(),
		Locations: fieldLocations(fields),
		Path:      path.AsPath(),
		Nodes:     fields,
		Err:       err,
	}
}

// UnexpectedError wraps a recovered panic value that is not an error.
type UnexpectedError struct {
	Value any
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("Unexpected error value: %s", inspect(e.Value))
}

// OrderedMap is a result object. Keys keep selection order.
type OrderedMap struct {
	Keys   []string
	Values map[string]any
}

func NewOrderedMap(size int) *OrderedMap {
	return &OrderedMap{Keys: make([]string, 0, size), Values: make(map[string]any, size)}
}

func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.Values[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = value
}

func (m *OrderedMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Values[key]
	return v, ok
}

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Keys)
}

// ToMap converts the object and any nested objects into plain maps.
func (m *OrderedMap) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.Keys))
	for _, k := range m.Keys {
		out[k] = plain(m.Values[k])
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *OrderedMap:
		if x == nil {
			return nil
		}
		return x.ToMap()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.Values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExecutionResult represents the result of executing a GraphQL query
type ExecutionResult struct {
	Data       *OrderedMap
	Errors     []*GraphQLError
	Extensions map[string]any
	// DataOmitted is set when execution never started (invalid variables,
	// failed subscription setup); "data" is then left out of the JSON form.
	DataOmitted bool
}

func (r *ExecutionResult) MarshalJSON() ([]byte, error) {
	type withData struct {
		Data       *OrderedMap     `json:"data"`
		Errors     []*GraphQLError `json:"errors,omitempty"`
		Extensions map[string]any  `json:"extensions,omitempty"`
	}
	type withoutData struct {
		Errors     []*GraphQLError `json:"errors,omitempty"`
		Extensions map[string]any  `json:"extensions,omitempty"`
	}
	if r.DataOmitted {
		return json.Marshal(withoutData{Errors: r.Errors, Extensions: r.Extensions})
	}
	return json.Marshal(withData{Data: r.Data, Errors: r.Errors, Extensions: r.Extensions})
}
