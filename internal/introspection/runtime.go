package introspection

import (
	"context"
	"fmt"
	"sort"

	executor "github.com/hanpama/gqlengine/internal/executor"
	schema "github.com/hanpama/gqlengine/internal/schema"
)

// Wrapper holds the introspection-aware runtime and the schema it serves.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap extends sch with the introspection types and returns a Runtime that
// answers them. Every other field is delegated to base.
func Wrap(base executor.Runtime, sch *schema.Schema) *Wrapper {
	if base == nil {
		base = executor.NewResolverMap()
	}
	extended := extend(sch)
	return &Wrapper{
		Runtime: &runtime{base: base, schema: extended},
		Schema:  extended,
	}
}

// runtime represents every __Type as a *schema.TypeRef so that wrapped and
// named types share one code path.
type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

func (r *runtime) ResolveField(ctx context.Context, source any, args map[string]any, info *executor.ResolveInfo) (any, error) {
	parent := info.ParentType.Name
	if parent == r.schema.QueryType {
		switch info.FieldName {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if r.schema.GetType(name) == nil {
				return nil, nil
			}
			return schema.NamedType(name), nil
		}
	}
	if !schema.IsIntrospectionName(parent) {
		return r.base.ResolveField(ctx, source, args, info)
	}

	field := info.FieldName
	showDeprecated, _ := args["includeDeprecated"].(bool)
	switch src := source.(type) {
	case *schema.Schema:
		return r.schemaField(src, field), nil
	case *schema.TypeRef:
		return r.typeField(src, field, showDeprecated), nil
	case *schema.Field:
		return fieldField(src, field, showDeprecated), nil
	case *schema.InputValue:
		return inputValueField(src, field), nil
	case *schema.EnumValue:
		return enumValueField(src, field), nil
	case *schema.Directive:
		return directiveField(src, field, showDeprecated), nil
	}
	return nil, fmt.Errorf("introspection: unexpected source %T for %s.%s", source, parent, field)
}

func (r *runtime) SubscribeField(ctx context.Context, source any, args map[string]any, info *executor.ResolveInfo) (any, error) {
	return r.base.SubscribeField(ctx, source, args, info)
}

func (r *runtime) ResolveType(ctx context.Context, value any, info *executor.ResolveInfo, abstractType *schema.Type) (string, error) {
	return r.base.ResolveType(ctx, value, info, abstractType)
}

func (r *runtime) schemaField(sch *schema.Schema, field string) any {
	switch field {
	case "description":
		return optional(sch.Description)
	case "types":
		names := make([]string, 0, len(sch.Types))
		for name := range sch.Types {
			names = append(names, name)
		}
		return r.refs(names, true)
	case "queryType":
		return r.rootRef(sch.QueryType)
	case "mutationType":
		return r.rootRef(sch.MutationType)
	case "subscriptionType":
		return r.rootRef(sch.SubscriptionType)
	case "directives":
		out := make([]*schema.Directive, 0, len(sch.Directives))
		for _, d := range sch.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}
	return nil
}

func (r *runtime) rootRef(name string) *schema.TypeRef {
	if name == "" || r.schema.GetType(name) == nil {
		return nil
	}
	return schema.NamedType(name)
}

// refs turns type names into __Type sources, skipping unknown names.
func (r *runtime) refs(names []string, sorted bool) []*schema.TypeRef {
	if sorted {
		sort.Strings(names)
	}
	out := make([]*schema.TypeRef, 0, len(names))
	for _, name := range names {
		if r.schema.GetType(name) != nil {
			out = append(out, schema.NamedType(name))
		}
	}
	return out
}

func (r *runtime) typeField(ref *schema.TypeRef, field string, showDeprecated bool) any {
	if ref.Kind != schema.TypeRefKindNamed {
		switch field {
		case "kind":
			return string(ref.Kind)
		case "ofType":
			return ref.OfType
		}
		return nil
	}

	t := r.schema.GetType(ref.Named)
	if t == nil {
		return nil
	}
	switch field {
	case "kind":
		return string(t.Kind)
	case "name":
		return t.Name
	case "description":
		return optional(t.Description)
	case "specifiedByURL":
		if t.SpecifiedByURL != nil {
			return *t.SpecifiedByURL
		}
	case "fields":
		if t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface {
			return visible(t.Fields, showDeprecated, func(f *schema.Field) bool { return f.IsDeprecated })
		}
	case "interfaces":
		if t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface {
			return r.refs(append([]string(nil), t.Interfaces...), false)
		}
	case "possibleTypes":
		if t.IsAbstract() {
			possible := r.schema.PossibleTypes(t)
			names := make([]string, len(possible))
			for i, p := range possible {
				names[i] = p.Name
			}
			return r.refs(names, true)
		}
	case "enumValues":
		if t.Kind == schema.TypeKindEnum {
			return visible(t.EnumValues, showDeprecated, func(v *schema.EnumValue) bool { return v.IsDeprecated })
		}
	case "inputFields":
		if t.Kind == schema.TypeKindInputObject {
			return visible(t.InputFields, showDeprecated, func(v *schema.InputValue) bool { return v.IsDeprecated })
		}
	case "isOneOf":
		if t.Kind == schema.TypeKindInputObject {
			return t.OneOf
		}
	}
	return nil
}

func fieldField(f *schema.Field, field string, showDeprecated bool) any {
	switch field {
	case "name":
		return f.Name
	case "description":
		return optional(f.Description)
	case "args":
		return visible(f.Arguments, showDeprecated, func(v *schema.InputValue) bool { return v.IsDeprecated })
	case "type":
		return f.Type
	case "isDeprecated":
		return f.IsDeprecated
	case "deprecationReason":
		return reason(f.IsDeprecated, f.DeprecationReason)
	}
	return nil
}

func inputValueField(v *schema.InputValue, field string) any {
	switch field {
	case "name":
		return v.Name
	case "description":
		return optional(v.Description)
	case "type":
		return v.Type
	case "defaultValue":
		if def, ok := v.DefaultString(); ok {
			return def
		}
		return nil
	case "isDeprecated":
		return v.IsDeprecated
	case "deprecationReason":
		return reason(v.IsDeprecated, v.DeprecationReason)
	}
	return nil
}

func enumValueField(v *schema.EnumValue, field string) any {
	switch field {
	case "name":
		return v.Name
	case "description":
		return optional(v.Description)
	case "isDeprecated":
		return v.IsDeprecated
	case "deprecationReason":
		return reason(v.IsDeprecated, v.DeprecationReason)
	}
	return nil
}

func directiveField(d *schema.Directive, field string, showDeprecated bool) any {
	switch field {
	case "name":
		return d.Name
	case "description":
		return optional(d.Description)
	case "isRepeatable":
		return d.IsRepeatable
	case "locations":
		return d.Locations
	case "args":
		return visible(d.Arguments, showDeprecated, func(v *schema.InputValue) bool { return v.IsDeprecated })
	}
	return nil
}

// visible keeps definition order and drops deprecated entries unless asked.
func visible[T any](items []T, showDeprecated bool, deprecated func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if showDeprecated || !deprecated(item) {
			out = append(out, item)
		}
	}
	return out
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reason(deprecated bool, why string) any {
	if !deprecated {
		return nil
	}
	return why
}
