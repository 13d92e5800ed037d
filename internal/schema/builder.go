package schema

import (
	"fmt"

	"github.com/hanpama/gqlengine/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
)

// BuildFromSDL parses and validates SDL with gqlparser and converts the result
// into an executable schema. The returned schema has already passed Validate.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return BuildFromAST(doc)
}

// BuildFromAST converts a gqlparser schema. Built-in definitions from the
// gqlparser prelude are replaced with this package's own.
func BuildFromAST(doc *ast.Schema) (*Schema, error) {
	s := NewSchema("")
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}
	// Builtins
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective).
		AddDirective(deprecatedDirective)

	for _, def := range doc.Types {
		if def.BuiltIn || IsIntrospectionName(def.Name) {
			continue
		}
		switch def.Kind {
		case ast.Object:
			s.AddType(buildObject(def))
		case ast.Interface:
			s.AddType(buildInterface(def, doc.PossibleTypes[def.Name]))
		case ast.Union:
			s.AddType(buildUnion(def))
		case ast.Enum:
			s.AddType(buildEnum(def))
		case ast.InputObject:
			s.AddType(buildInput(def))
		case ast.Scalar:
			s.AddType(buildScalar(def))
		}
	}
	for _, dir := range doc.Directives {
		if dir.Position != nil && dir.Position.Src != nil && dir.Position.Src.BuiltIn {
			continue
		}
		s.AddDirective(buildDirective(dir))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildObject(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fieldDef := range def.Fields {
		if IsIntrospectionName(fieldDef.Name) {
			continue
		}
		t.AddField(buildField(fieldDef))
	}
	return t
}

func buildInterface(def *ast.Definition, possible []*ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInterface, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fieldDef := range def.Fields {
		if IsIntrospectionName(fieldDef.Name) {
			continue
		}
		t.AddField(buildField(fieldDef))
	}
	for _, p := range possible {
		if p.Kind == ast.Object {
			t.AddPossibleType(p.Name)
		}
	}
	return t
}

func buildUnion(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	return t
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		ev := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecationReason(v.Directives); ok {
			ev.Deprecate(reason)
		}
		t.AddEnumValue(ev)
	}
	return t
}

func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description)
	for _, f := range def.Fields {
		iv := NewInputValue(f.Name, f.Description, TypeRefFromAST(f.Type))
		iv.DefaultLiteral = f.DefaultValue
		if reason, ok := deprecationReason(f.Directives); ok {
			iv.Deprecate(reason)
		}
		t.AddInputField(iv)
	}
	t.SetOneOf(def.Directives.ForName("oneOf") != nil)
	return t
}

func buildScalar(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			url := arg.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	return t
}

func buildField(def *ast.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, TypeRefFromAST(def.Type))
	for _, a := range def.Arguments {
		f.AddArgument(buildArgument(a))
	}
	if reason, ok := deprecationReason(def.Directives); ok {
		f.Deprecate(reason)
	}
	return f
}

func buildArgument(def *ast.ArgumentDefinition) *InputValue {
	iv := NewInputValue(def.Name, def.Description, TypeRefFromAST(def.Type))
	iv.DefaultLiteral = def.DefaultValue
	if reason, ok := deprecationReason(def.Directives); ok {
		iv.Deprecate(reason)
	}
	return iv
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description)
	for _, a := range def.Arguments {
		d.AddArgument(buildArgument(a))
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	d.SetRepeatable(def.IsRepeatable)
	return d
}

func deprecationReason(directives ast.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil && arg.Value.Kind != ast.NullValue {
		return arg.Value.Raw, true
	}
	return DefaultDeprecationReason, true
}
