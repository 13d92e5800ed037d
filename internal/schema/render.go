package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema. Types and directives are printed in
// name order; built-in scalars, built-in directives and introspection types
// are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	p := &printer{}
	p.schemaDefinition(s)

	names := make([]string, 0, len(s.Types))
	for name, typ := range s.Types {
		if builtinScalars[name] == typ || IsIntrospectionName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.typeDefinition(s.Types[name])
	}

	directives := make([]string, 0, len(s.Directives))
	for name, d := range s.Directives {
		if builtinDirectives[name] == d {
			continue
		}
		directives = append(directives, name)
	}
	sort.Strings(directives)
	for _, name := range directives {
		p.directiveDefinition(s.Directives[name])
	}
	return strings.TrimRight(p.String(), "\n") + "\n"
}

type printer struct {
	strings.Builder
}

func (p *printer) schemaDefinition(s *Schema) {
	if (s.QueryType == "" || s.QueryType == "Query") &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription") {
		return
	}
	p.WriteString("schema {\n")
	if s.QueryType != "" {
		fmt.Fprintf(p, "  query: %s\n", s.QueryType)
	}
	if s.MutationType != "" {
		fmt.Fprintf(p, "  mutation: %s\n", s.MutationType)
	}
	if s.SubscriptionType != "" {
		fmt.Fprintf(p, "  subscription: %s\n", s.SubscriptionType)
	}
	p.WriteString("}\n\n")
}

func (p *printer) description(desc, indent string) {
	if desc == "" {
		return
	}
	if !strings.Contains(desc, "\n") && !strings.Contains(desc, `"`) {
		fmt.Fprintf(p, "%s%s\n", indent, strconv.Quote(desc))
		return
	}
	fmt.Fprintf(p, "%s\"\"\"\n", indent)
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		fmt.Fprintf(p, "%s%s\n", indent, line)
	}
	fmt.Fprintf(p, "%s\"\"\"\n", indent)
}

func (p *printer) deprecated(isDeprecated bool, reason string) {
	if !isDeprecated {
		return
	}
	p.WriteString(" @deprecated")
	if reason != "" && reason != DefaultDeprecationReason {
		fmt.Fprintf(p, "(reason: %s)", strconv.Quote(reason))
	}
}

func (p *printer) typeDefinition(t *Type) {
	p.description(t.Description, "")
	switch t.Kind {
	case TypeKindScalar:
		fmt.Fprintf(p, "scalar %s", t.Name)
		if t.SpecifiedByURL != nil {
			fmt.Fprintf(p, " @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
		}
		p.WriteString("\n\n")
	case TypeKindEnum:
		fmt.Fprintf(p, "enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			p.description(v.Description, "  ")
			p.WriteString("  " + v.Name)
			p.deprecated(v.IsDeprecated, v.DeprecationReason)
			p.WriteString("\n")
		}
		p.WriteString("}\n\n")
	case TypeKindInputObject:
		fmt.Fprintf(p, "input %s", t.Name)
		if t.OneOf {
			p.WriteString(" @oneOf")
		}
		p.WriteString(" {\n")
		for _, f := range t.InputFields {
			p.description(f.Description, "  ")
			p.WriteString("  " + inputValue(f))
			p.deprecated(f.IsDeprecated, f.DeprecationReason)
			p.WriteString("\n")
		}
		p.WriteString("}\n\n")
	case TypeKindObject, TypeKindInterface:
		keyword := "type"
		if t.Kind == TypeKindInterface {
			keyword = "interface"
		}
		fmt.Fprintf(p, "%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			p.WriteString(" implements " + strings.Join(t.Interfaces, " & "))
		}
		p.WriteString(" {\n")
		for _, f := range t.Fields {
			p.description(f.Description, "  ")
			p.WriteString("  " + f.Name + arguments(f.Arguments) + ": " + f.Type.String())
			p.deprecated(f.IsDeprecated, f.DeprecationReason)
			p.WriteString("\n")
		}
		p.WriteString("}\n\n")
	case TypeKindUnion:
		fmt.Fprintf(p, "union %s = %s\n\n", t.Name, strings.Join(t.PossibleTypes, " | "))
	}
}

func (p *printer) directiveDefinition(d *Directive) {
	p.description(d.Description, "")
	p.WriteString("directive @" + d.Name + arguments(d.Arguments))
	if d.IsRepeatable {
		p.WriteString(" repeatable")
	}
	p.WriteString(" on " + strings.Join(d.Locations, " | ") + "\n\n")
}

func arguments(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = inputValue(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func inputValue(v *InputValue) string {
	out := v.Name + ": " + v.Type.String()
	if def, ok := v.DefaultString(); ok {
		out += " = " + def
	}
	return out
}

// DefaultString prints the declared default as a GraphQL literal.
func (v *InputValue) DefaultString() (string, bool) {
	switch {
	case v.DefaultLiteral != nil:
		return v.DefaultLiteral.String(), true
	case v.DefaultValue != nil:
		return renderValue(v.DefaultValue), true
	}
	return "", false
}

// renderValue prints a programmatic default value as a GraphQL literal.
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
