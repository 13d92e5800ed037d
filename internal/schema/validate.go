package schema

import (
	"errors"
	"fmt"
	"sort"
)

// Validate checks the structural rules the executor relies on: root types are
// object types, every type reference names a known type, union members are
// objects and implementations declare every interface field.
//
// Validation runs once, during construction. The executor assumes a valid
// schema and does not re-check.
func (s *Schema) Validate() error {
	var errs []error
	if s.QueryType == "" {
		errs = append(errs, errors.New("schema does not define the required query root type"))
	}
	for _, root := range []struct{ op, name string }{
		{"query", s.QueryType},
		{"mutation", s.MutationType},
		{"subscription", s.SubscriptionType},
	} {
		if root.name == "" {
			continue
		}
		t := s.Types[root.name]
		if t == nil {
			errs = append(errs, fmt.Errorf("%s root type %q is not defined", root.op, root.name))
		} else if t.Kind != TypeKindObject {
			errs = append(errs, fmt.Errorf("%s root type %q must be an object type", root.op, root.name))
		}
	}

	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		errs = append(errs, s.validateType(s.Types[name])...)
	}
	return errors.Join(errs...)
}

func (s *Schema) validateType(t *Type) []error {
	var errs []error
	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		if len(t.Fields) == 0 && !IsIntrospectionName(t.Name) {
			errs = append(errs, fmt.Errorf("type %q must define one or more fields", t.Name))
		}
		for _, f := range t.Fields {
			errs = append(errs, s.checkRef(t.Name+"."+f.Name, f.Type, false)...)
			for _, a := range f.Arguments {
				errs = append(errs, s.checkRef(t.Name+"."+f.Name+"("+a.Name+":)", a.Type, true)...)
			}
		}
		for _, name := range t.Interfaces {
			iface := s.Types[name]
			if iface == nil || iface.Kind != TypeKindInterface {
				errs = append(errs, fmt.Errorf("type %q can only implement interfaces, %q is not one", t.Name, name))
				continue
			}
			for _, f := range iface.Fields {
				if t.Field(f.Name) == nil {
					errs = append(errs, fmt.Errorf("interface field %s.%s expected but %s does not provide it", name, f.Name, t.Name))
				}
			}
		}
	case TypeKindUnion:
		if len(t.PossibleTypes) == 0 {
			errs = append(errs, fmt.Errorf("union %q must define one or more member types", t.Name))
		}
		for _, name := range t.PossibleTypes {
			m := s.Types[name]
			if m == nil || m.Kind != TypeKindObject {
				errs = append(errs, fmt.Errorf("union %q can only include object types, %q is not one", t.Name, name))
			}
		}
	case TypeKindEnum:
		if len(t.EnumValues) == 0 {
			errs = append(errs, fmt.Errorf("enum %q must define one or more values", t.Name))
		}
	case TypeKindInputObject:
		for _, f := range t.InputFields {
			errs = append(errs, s.checkRef(t.Name+"."+f.Name, f.Type, true)...)
		}
	case TypeKindScalar:
	default:
		errs = append(errs, fmt.Errorf("type %q has unknown kind %q", t.Name, t.Kind))
	}
	return errs
}

func (s *Schema) checkRef(where string, ref *TypeRef, input bool) []error {
	if ref == nil {
		return []error{fmt.Errorf("%s has no type", where)}
	}
	named := s.GetType(ref.GetNamedType())
	if named == nil {
		return []error{fmt.Errorf("%s references unknown type %q", where, ref.GetNamedType())}
	}
	if input && !named.IsInputType() {
		return []error{fmt.Errorf("%s must be an input type but %q is %s", where, named.Name, named.Kind)}
	}
	if !input && named.Kind == TypeKindInputObject {
		return []error{fmt.Errorf("%s must be an output type but %q is %s", where, named.Name, named.Kind)}
	}
	return nil
}
