package executor

import (
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
)

// ValueFromAST converts a literal from the document into the internal
// representation of t. Variables are looked up in vars; a variable that was
// not supplied makes the value invalid. ok is false when the literal is not a
// valid value of t.
func ValueFromAST(node *ast.Value, t *schema.TypeRef, sch *schema.Schema, vars map[string]any) (value any, ok bool) {
	if node == nil {
		return nil, false
	}
	if node.Kind == ast.Variable {
		v, present := vars[node.Raw]
		if !present {
			return nil, false
		}
		if v == nil && t.IsNonNull() {
			return nil, false
		}
		// variables were coerced against their declared type already
		return v, true
	}

	if t.IsNonNull() {
		if node.Kind == ast.NullValue {
			return nil, false
		}
		return ValueFromAST(node, t.OfType, sch, vars)
	}
	if node.Kind == ast.NullValue {
		return nil, true
	}

	if t.Kind == schema.TypeRefKindList {
		itemType := t.OfType
		if node.Kind != ast.ListValue {
			v, ok := ValueFromAST(node, itemType, sch, vars)
			if !ok {
				return nil, false
			}
			return []any{v}, true
		}
		out := make([]any, 0, len(node.Children))
		for _, child := range node.Children {
			if isMissingVariable(child.Value, vars) {
				if itemType.IsNonNull() {
					return nil, false
				}
				out = append(out, nil)
				continue
			}
			v, ok := ValueFromAST(child.Value, itemType, sch, vars)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	}

	named := sch.GetType(t.Named)
	if named == nil {
		return nil, false
	}
	switch named.Kind {
	case schema.TypeKindInputObject:
		if node.Kind != ast.ObjectValue {
			return nil, false
		}
		out := make(map[string]any, len(named.InputFields))
		for _, f := range named.InputFields {
			child := node.Children.ForName(f.Name)
			if child == nil || isMissingVariable(child, vars) {
				if f.HasDefault() {
					if v, ok := defaultValue(sch, f); ok {
						out[f.Name] = v
					}
				} else if f.Type.IsNonNull() {
					return nil, false
				}
				continue
			}
			v, ok := ValueFromAST(child, f.Type, sch, vars)
			if !ok {
				return nil, false
			}
			out[f.Name] = v
		}
		if named.OneOf && (len(node.Children) != 1 || out[node.Children[0].Name] == nil) {
			return nil, false
		}
		return out, true
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := named.ParseLiteral(node, vars)
		if err != nil {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}

// ValueFromASTUntyped converts a literal into plain Go values without
// consulting a type.
func ValueFromASTUntyped(node *ast.Value, vars map[string]any) any {
	return schema.ValueFromASTUntyped(node, vars)
}

func isMissingVariable(node *ast.Value, vars map[string]any) bool {
	if node == nil || node.Kind != ast.Variable {
		return false
	}
	_, present := vars[node.Raw]
	return !present
}
