package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

// SerializeValue converts an internal value of a leaf type to its result form.
func (t *Type) SerializeValue(v any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.Serializer != nil {
			return t.Serializer(v)
		}
		if b := builtinScalars[t.Name]; b != nil {
			return b.Serializer(v)
		}
		return v, nil
	case TypeKindEnum:
		for _, ev := range t.EnumValues {
			if sameValue(ev.InternalValue(), v) {
				return ev.Name, nil
			}
		}
		return nil, invalidf("Enum %q cannot represent value: %s", t.Name, Inspect(v))
	default:
		return nil, fmt.Errorf("type %q is not a leaf type", t.Name)
	}
}

// ParseValue converts an externally supplied input value (a variable) to its
// internal form.
func (t *Type) ParseValue(v any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.ValueParser != nil {
			return t.ValueParser(v)
		}
		if b := builtinScalars[t.Name]; b != nil {
			return b.ValueParser(v)
		}
		return v, nil
	case TypeKindEnum:
		name, ok := v.(string)
		if !ok {
			return nil, invalidf("Enum %q cannot represent non-string value: %s.", t.Name, Inspect(v))
		}
		ev := t.EnumValue(name)
		if ev == nil {
			return nil, invalidf("Value %q does not exist in %q enum.", name, t.Name)
		}
		return ev.InternalValue(), nil
	default:
		return nil, fmt.Errorf("type %q is not a leaf type", t.Name)
	}
}

// ParseLiteral converts a literal from the query document to its internal form.
// Variables are consulted for literals nested inside custom scalar values.
func (t *Type) ParseLiteral(node *ast.Value, variables map[string]any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.LiteralParser != nil {
			return t.LiteralParser(node, variables)
		}
		if b := builtinScalars[t.Name]; b != nil {
			return b.LiteralParser(node, variables)
		}
		v := ValueFromASTUntyped(node, variables)
		if t.ValueParser != nil {
			return t.ValueParser(v)
		}
		return v, nil
	case TypeKindEnum:
		if node.Kind != ast.EnumValue {
			return nil, invalidf("Enum %q cannot represent non-enum value: %s.", t.Name, node.String())
		}
		ev := t.EnumValue(node.Raw)
		if ev == nil {
			return nil, invalidf("Value %q does not exist in %q enum.", node.Raw, t.Name)
		}
		return ev.InternalValue(), nil
	default:
		return nil, fmt.Errorf("type %q is not a leaf type", t.Name)
	}
}

// ValueFromASTUntyped converts a literal into plain Go values without a type.
// Unset variables become nil.
func ValueFromASTUntyped(node *ast.Value, variables map[string]any) any {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case ast.Variable:
		return variables[node.Raw]
	case ast.IntValue:
		if n, err := strconv.ParseInt(node.Raw, 10, 64); err == nil {
			return int(n)
		}
		f, _ := strconv.ParseFloat(node.Raw, 64)
		return f
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(node.Raw, 64)
		return f
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return node.Raw
	case ast.BooleanValue:
		return node.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		out := make([]any, 0, len(node.Children))
		for _, c := range node.Children {
			out = append(out, ValueFromASTUntyped(c.Value, variables))
		}
		return out
	case ast.ObjectValue:
		out := make(map[string]any, len(node.Children))
		for _, c := range node.Children {
			out[c.Name] = ValueFromASTUntyped(c.Value, variables)
		}
		return out
	}
	return nil
}

// Inspect renders a runtime value for error messages.
func Inspect(v any) string {
	if v == nil {
		return "null"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// InvalidValueError is returned by the built-in leaf hooks. Its message is
// complete and is reported to clients as it is.
type InvalidValueError struct {
	Message string
}

func (e *InvalidValueError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &InvalidValueError{Message: fmt.Sprintf(format, args...)}
}
