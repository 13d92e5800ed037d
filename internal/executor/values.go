package executor

import (
	"errors"
	"fmt"

	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
)

const tooManyVariableErrors = "Too many errors processing variables, error limit reached. Execution aborted."

// CoerceVariableValues coerces the raw inputs against the operation's variable
// definitions. It returns either the coerced values or the errors, never
// both. When maxErrors > 0 and that many errors have been collected, the next
// one is replaced by a single "too many errors" error and coercion stops.
func CoerceVariableValues(sch *schema.Schema, defs ast.VariableDefinitionList, inputs map[string]any, maxErrors int) (map[string]any, []*GraphQLError) {
	var errs []*GraphQLError
	onError := func(err *GraphQLError) error {
		if maxErrors > 0 && len(errs) >= maxErrors {
			return &GraphQLError{Message: tooManyVariableErrors}
		}
		errs = append(errs, err)
		return nil
	}

	coerced, abort := coerceVariableValues(sch, defs, inputs, onError)
	if abort != nil {
		var gqlErr *GraphQLError
		if !errors.As(abort, &gqlErr) {
			gqlErr = &GraphQLError{Message: abort.Error(), Err: abort}
		}
		return nil, append(errs, gqlErr)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

func coerceVariableValues(sch *schema.Schema, defs ast.VariableDefinitionList, inputs map[string]any, onError func(*GraphQLError) error) (map[string]any, error) {
	coerced := make(map[string]any, len(defs))
	for _, def := range defs {
		name := def.Variable
		varType := schema.TypeRefFromAST(def.Type)
		typeName := def.Type.String()

		named := sch.GetType(varType.GetNamedType())
		if named == nil || !named.IsInputType() {
			err := newError(fmt.Sprintf("Variable \"$%s\" expected value of type \"%s\" which cannot be used as an input type.", name, typeName), def.Type.Position)
			if abort := onError(err); abort != nil {
				return nil, abort
			}
			continue
		}

		value, present := inputs[name]
		if !present {
			if def.DefaultValue != nil {
				if v, ok := ValueFromAST(def.DefaultValue, varType, sch, nil); ok {
					coerced[name] = v
				}
			} else if varType.IsNonNull() {
				err := newError(fmt.Sprintf("Variable \"$%s\" of required type \"%s\" was not provided.", name, typeName), def.Position)
				if abort := onError(err); abort != nil {
					return nil, abort
				}
			}
			continue
		}

		if value == nil && varType.IsNonNull() {
			err := newError(fmt.Sprintf("Variable \"$%s\" of non-null type \"%s\" must not be null.", name, typeName), def.Position)
			if abort := onError(err); abort != nil {
				return nil, abort
			}
			continue
		}

		v, abort := CoerceInputValue(value, varType, sch, func(path Path, invalidValue any, cerr *GraphQLError) error {
			prefix := fmt.Sprintf("Variable \"$%s\" got invalid value %s", name, inspect(invalidValue))
			if len(path) > 0 {
				prefix += fmt.Sprintf(" at \"%s%s\"", name, printPath(path))
			}
			err := newError(prefix+"; "+cerr.Message, def.Position)
			err.Err = cerr.Err
			return onError(err)
		})
		if abort != nil {
			return nil, abort
		}
		coerced[name] = v
	}
	return coerced, nil
}

// CoerceArgumentValues coerces the argument nodes of a field or directive
// against its definitions, in definition order. The first invalid argument
// fails the whole call.
func CoerceArgumentValues(sch *schema.Schema, defs []*schema.InputValue, nodes ast.ArgumentList, vars map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(defs))
	for _, def := range defs {
		name := def.Name
		argType := def.Type

		node := nodes.ForName(name)
		if node == nil || node.Value == nil {
			if def.HasDefault() {
				if v, ok := defaultValue(sch, def); ok {
					coerced[name] = v
				}
			} else if argType.IsNonNull() {
				return nil, newError(fmt.Sprintf("Argument \"%s\" of required type \"%s\" was not provided.", name, argType))
			}
			continue
		}

		valueNode := node.Value
		isNull := valueNode.Kind == ast.NullValue
		if valueNode.Kind == ast.Variable {
			varValue, present := vars[valueNode.Raw]
			if !present {
				if def.HasDefault() {
					if v, ok := defaultValue(sch, def); ok {
						coerced[name] = v
					}
				} else if argType.IsNonNull() {
					return nil, newError(fmt.Sprintf(
						"Argument \"%s\" of required type \"%s\" was provided the variable \"$%s\" which was not provided a runtime value.",
						name, argType, valueNode.Raw), valueNode.Position)
				}
				continue
			}
			isNull = varValue == nil
		}

		if isNull && argType.IsNonNull() {
			return nil, newError(fmt.Sprintf("Argument \"%s\" of non-null type \"%s\" must not be null.", name, argType), valueNode.Position)
		}

		v, ok := ValueFromAST(valueNode, argType, sch, vars)
		if !ok {
			return nil, newError(fmt.Sprintf("Argument \"%s\" has invalid value %s.", name, valueNode.String()), valueNode.Position)
		}
		coerced[name] = v
	}
	return coerced, nil
}

// CoerceDirectiveValues coerces the arguments of the application of def
// among directives. It returns nil, nil when the directive is not applied.
func CoerceDirectiveValues(sch *schema.Schema, def *schema.Directive, directives ast.DirectiveList, vars map[string]any) (map[string]any, error) {
	d := directives.ForName(def.Name)
	if d == nil {
		return nil, nil
	}
	return CoerceArgumentValues(sch, def.Arguments, d.Arguments, vars)
}
