package executor

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	schema "github.com/hanpama/gqlengine/internal/schema"
)

// OnCoercionError receives each invalid input found by CoerceInputValue. A
// non-nil return aborts coercion and is returned to the caller.
type OnCoercionError func(path Path, invalidValue any, err *GraphQLError) error

// CoerceInputValue converts an external input value (a variable) into the
// internal representation of t. With a nil onError the first invalid input
// aborts coercion with a path-qualified error.
func CoerceInputValue(value any, t *schema.TypeRef, sch *schema.Schema, onError OnCoercionError) (any, error) {
	if onError == nil {
		onError = defaultOnCoercionError
	}
	c := &inputCoercer{schema: sch, onError: onError}
	coerced := c.coerce(value, t, nil)
	if c.abort != nil {
		return nil, c.abort
	}
	return coerced, nil
}

func defaultOnCoercionError(path Path, invalidValue any, err *GraphQLError) error {
	prefix := "Invalid value " + inspect(invalidValue)
	if len(path) > 0 {
		prefix += fmt.Sprintf(" at \"value%s\"", printPath(path))
	}
	out := *err
	out.Message = prefix + ": " + err.Message
	return &out
}

type inputCoercer struct {
	schema  *schema.Schema
	onError OnCoercionError
	abort   error
}

func (c *inputCoercer) report(path *ResponsePath, invalidValue any, err *GraphQLError) {
	if c.abort != nil {
		return
	}
	if abort := c.onError(path.AsPath(), invalidValue, err); abort != nil {
		c.abort = abort
	}
}

func (c *inputCoercer) coerce(value any, t *schema.TypeRef, path *ResponsePath) any {
	if c.abort != nil {
		return nil
	}
	if t.IsNonNull() {
		if value != nil {
			return c.coerce(value, t.OfType, path)
		}
		c.report(path, value, &GraphQLError{
			Message: fmt.Sprintf("Expected non-nullable type \"%s\" not to be null.", t),
		})
		return nil
	}
	if value == nil {
		return nil
	}

	if t.Kind == schema.TypeRefKindList {
		itemType := t.OfType
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = c.coerce(rv.Index(i).Interface(), itemType, path.Add(i, ""))
			}
			return out
		}
		// a single value stands for a list of one
		return []any{c.coerce(value, itemType, path)}
	}

	named := c.schema.GetType(t.Named)
	if named == nil {
		c.report(path, value, &GraphQLError{Message: fmt.Sprintf("Unknown type \"%s\".", t.Named)})
		return nil
	}
	switch named.Kind {
	case schema.TypeKindInputObject:
		return c.coerceInputObject(value, named, path)
	case schema.TypeKindScalar, schema.TypeKindEnum:
		parsed, err := named.ParseValue(value)
		if err != nil {
			var (
				gqlErr     *GraphQLError
				invalidErr *schema.InvalidValueError
			)
			if errors.As(err, &gqlErr) {
				c.report(path, value, gqlErr)
			} else if errors.As(err, &invalidErr) {
				c.report(path, value, &GraphQLError{Message: invalidErr.Message, Err: err})
			} else {
				c.report(path, value, &GraphQLError{
					Message: fmt.Sprintf("Expected type \"%s\". %s", named.Name, err.Error()),
					Err:     err,
				})
			}
			return nil
		}
		return parsed
	case schema.TypeKindObject, schema.TypeKindInterface, schema.TypeKindUnion:
		c.report(path, value, &GraphQLError{Message: fmt.Sprintf("Type \"%s\" is not an input type.", named.Name)})
		return nil
	default:
		c.report(path, value, &GraphQLError{Message: fmt.Sprintf("Unexpected input type kind %q.", named.Kind)})
		return nil
	}
}

func (c *inputCoercer) coerceInputObject(value any, t *schema.Type, path *ResponsePath) any {
	fields, ok := value.(map[string]any)
	if !ok {
		c.report(path, value, &GraphQLError{Message: fmt.Sprintf("Expected type \"%s\" to be an object.", t.Name)})
		return nil
	}

	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		fieldValue, present := fields[f.Name]
		if !present {
			if f.HasDefault() {
				if v, ok := defaultValue(c.schema, f); ok {
					out[f.Name] = v
				}
			} else if f.Type.IsNonNull() {
				c.report(path, value, &GraphQLError{
					Message: fmt.Sprintf("Field \"%s\" of required type \"%s\" was not provided.", f.Name, f.Type),
				})
			}
			continue
		}
		out[f.Name] = c.coerce(fieldValue, f.Type, path.Add(f.Name, ""))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t.InputField(k) != nil {
			continue
		}
		names := make([]string, len(t.InputFields))
		for i, f := range t.InputFields {
			names[i] = f.Name
		}
		c.report(path, value, &GraphQLError{
			Message: fmt.Sprintf("Field \"%s\" is not defined by type \"%s\".", k, t.Name) + didYouMean(suggestionList(k, names)),
		})
	}

	if t.OneOf {
		c.checkOneOf(value, t, fields, out, path)
	}
	return out
}

func (c *inputCoercer) checkOneOf(value any, t *schema.Type, fields, coerced map[string]any, path *ResponsePath) {
	if len(fields) != 1 {
		c.report(path, value, &GraphQLError{
			Message: fmt.Sprintf("Exactly one key must be specified for OneOf type \"%s\".", t.Name),
		})
		return
	}
	for k := range coerced {
		if coerced[k] == nil {
			c.report(path, value, &GraphQLError{Message: fmt.Sprintf("Field \"%s\" must be non-null.", k)})
		}
	}
}

// defaultValue returns the internal default of an argument or input field.
// SDL defaults are literals and are converted against the declared type.
func defaultValue(sch *schema.Schema, iv *schema.InputValue) (any, bool) {
	if iv.DefaultLiteral != nil {
		return ValueFromAST(iv.DefaultLiteral, iv.Type, sch, nil)
	}
	return iv.DefaultValue, iv.DefaultValue != nil
}

const maxSuggestions = 5

// suggestionList returns the options close enough to input to be worth
// suggesting, nearest first.
func suggestionList(input string, options []string) []string {
	type candidate struct {
		name     string
		distance int
	}
	threshold := int(math.Floor(float64(len(input))*0.4)) + 1
	lower := strings.ToLower(input)

	var candidates []candidate
	for _, option := range options {
		d := 0
		if option != input {
			optionLower := strings.ToLower(option)
			if optionLower == lower {
				d = 1
			} else {
				d = levenshtein.ComputeDistance(lower, optionLower)
			}
		}
		if d <= threshold {
			candidates = append(candidates, candidate{option, d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

func didYouMean(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	quoted := make([]string, 0, maxSuggestions)
	for i, s := range suggestions {
		if i == maxSuggestions {
			break
		}
		quoted = append(quoted, `"`+s+`"`)
	}
	switch len(quoted) {
	case 1:
		return " Did you mean " + quoted[0] + "?"
	case 2:
		return " Did you mean " + quoted[0] + " or " + quoted[1] + "?"
	}
	last := quoted[len(quoted)-1]
	return " Did you mean " + strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + last + "?"
}

func inspect(v any) string { return schema.Inspect(v) }
