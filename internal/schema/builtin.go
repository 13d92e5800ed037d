package schema

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

var stringType = &Type{
	Name:          "String",
	Kind:          TypeKindScalar,
	Description:   "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	Serializer:    serializeString,
	ValueParser:   parseStringValue,
	LiteralParser: parseStringLiteral,
}

var intType = &Type{
	Name:          "Int",
	Kind:          TypeKindScalar,
	Description:   "The `Int` scalar type represents non-fractional signed whole numeric values.",
	Serializer:    serializeInt,
	ValueParser:   parseIntValue,
	LiteralParser: parseIntLiteral,
}

var floatType = &Type{
	Name:          "Float",
	Kind:          TypeKindScalar,
	Description:   "The `Float` scalar type represents signed double-precision fractional values.",
	Serializer:    serializeFloat,
	ValueParser:   parseFloatValue,
	LiteralParser: parseFloatLiteral,
}

var booleanType = &Type{
	Name:          "Boolean",
	Kind:          TypeKindScalar,
	Description:   "The `Boolean` scalar type represents `true` or `false`.",
	Serializer:    serializeBoolean,
	ValueParser:   parseBooleanValue,
	LiteralParser: parseBooleanLiteral,
}

var idType = &Type{
	Name:          "ID",
	Kind:          TypeKindScalar,
	Description:   "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	Serializer:    serializeID,
	ValueParser:   parseIDValue,
	LiteralParser: parseIDLiteral,
}

var builtinScalars = map[string]*Type{
	"String":  stringType,
	"Int":     intType,
	"Float":   floatType,
	"Boolean": booleanType,
	"ID":      idType,
}

// BuiltinScalar returns the built-in scalar with the given name, or nil.
func BuiltinScalar(name string) *Type { return builtinScalars[name] }

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        NonNullType(NamedType("Boolean")),
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        NonNullType(NamedType("Boolean")),
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

var deprecatedDirective = &Directive{
	Name:        "deprecated",
	Description: "Marks an element of a GraphQL schema as no longer supported.",
	Arguments: []*InputValue{
		{
			Name:         "reason",
			Description:  "Explains why this element was deprecated, usually also including a suggestion for how to access supported similar data.",
			Type:         NamedType("String"),
			DefaultValue: DefaultDeprecationReason,
		},
	},
	Locations:    []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
	IsRepeatable: false,
}

// DefaultDeprecationReason is used when @deprecated carries no reason.
const DefaultDeprecationReason = "No longer supported"

var builtinDirectives = map[string]*Directive{
	"include":    includeDirective,
	"skip":       skipDirective,
	"deprecated": deprecatedDirective,
}

// SkipDirective and IncludeDirective are consulted by field collection.
func SkipDirective() *Directive    { return skipDirective }
func IncludeDirective() *Directive { return includeDirective }

func serializeInt(v any) (any, error) {
	var num float64
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, invalidf("Int cannot represent non-integer value: %s", Inspect(v))
		}
		num = f
	default:
		f, ok := toFloat64(v)
		if !ok {
			return nil, invalidf("Int cannot represent non-integer value: %s", Inspect(v))
		}
		num = f
	}
	return int32Range(num, v)
}

func parseIntValue(v any) (any, error) {
	if _, isBool := v.(bool); isBool {
		return nil, invalidf("Int cannot represent non-integer value: %s", Inspect(v))
	}
	num, ok := toFloat64(v)
	if !ok {
		return nil, invalidf("Int cannot represent non-integer value: %s", Inspect(v))
	}
	return int32Range(num, v)
}

func int32Range(num float64, v any) (any, error) {
	if math.IsNaN(num) || math.IsInf(num, 0) || num != math.Trunc(num) {
		return nil, invalidf("Int cannot represent non-integer value: %s", Inspect(v))
	}
	if num > math.MaxInt32 || num < math.MinInt32 {
		return nil, invalidf("Int cannot represent non 32-bit signed integer value: %s", Inspect(v))
	}
	return int(num), nil
}

func parseIntLiteral(node *ast.Value, _ map[string]any) (any, error) {
	if node.Kind != ast.IntValue {
		return nil, invalidf("Int cannot represent non-integer value: %s", node.String())
	}
	n, err := strconv.ParseInt(node.Raw, 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return nil, invalidf("Int cannot represent non 32-bit signed integer value: %s", node.Raw)
	}
	return int(n), nil
}

func serializeFloat(v any) (any, error) {
	var num float64
	switch x := v.(type) {
	case bool:
		if x {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, invalidf("Float cannot represent non numeric value: %s", Inspect(v))
		}
		num = f
	default:
		f, ok := toFloat64(v)
		if !ok {
			return nil, invalidf("Float cannot represent non numeric value: %s", Inspect(v))
		}
		num = f
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return nil, invalidf("Float cannot represent non numeric value: %s", Inspect(v))
	}
	return num, nil
}

func parseFloatValue(v any) (any, error) {
	if _, isBool := v.(bool); isBool {
		return nil, invalidf("Float cannot represent non numeric value: %s", Inspect(v))
	}
	num, ok := toFloat64(v)
	if !ok || math.IsNaN(num) || math.IsInf(num, 0) {
		return nil, invalidf("Float cannot represent non numeric value: %s", Inspect(v))
	}
	return num, nil
}

func parseFloatLiteral(node *ast.Value, _ map[string]any) (any, error) {
	if node.Kind != ast.IntValue && node.Kind != ast.FloatValue {
		return nil, invalidf("Float cannot represent non numeric value: %s", node.String())
	}
	f, err := strconv.ParseFloat(node.Raw, 64)
	if err != nil {
		return nil, invalidf("Float cannot represent non numeric value: %s", node.Raw)
	}
	return f, nil
}

func serializeString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	if isInteger(v) {
		return fmt.Sprintf("%d", v), nil
	}
	if f, ok := toFloat64(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return nil, invalidf("String cannot represent value: %s", Inspect(v))
}

func parseStringValue(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidf("String cannot represent a non string value: %s", Inspect(v))
	}
	return s, nil
}

func parseStringLiteral(node *ast.Value, _ map[string]any) (any, error) {
	if node.Kind != ast.StringValue && node.Kind != ast.BlockValue {
		return nil, invalidf("String cannot represent a non string value: %s", node.String())
	}
	return node.Raw, nil
}

func serializeBoolean(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if f, ok := toFloat64(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f != 0, nil
	}
	return nil, invalidf("Boolean cannot represent a non boolean value: %s", Inspect(v))
}

func parseBooleanValue(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, invalidf("Boolean cannot represent a non boolean value: %s", Inspect(v))
	}
	return b, nil
}

func parseBooleanLiteral(node *ast.Value, _ map[string]any) (any, error) {
	if node.Kind != ast.BooleanValue {
		return nil, invalidf("Boolean cannot represent a non boolean value: %s", node.String())
	}
	return node.Raw == "true", nil
}

func serializeID(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if s, ok := integerString(v); ok {
		return s, nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return nil, invalidf("ID cannot represent value: %s", Inspect(v))
}

func parseIDValue(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if s, ok := integerString(v); ok {
		return s, nil
	}
	return nil, invalidf("ID cannot represent value: %s", Inspect(v))
}

func parseIDLiteral(node *ast.Value, _ map[string]any) (any, error) {
	if node.Kind != ast.StringValue && node.Kind != ast.IntValue {
		return nil, invalidf("ID cannot represent a non-string and non-integer value: %s", node.String())
	}
	return node.Raw, nil
}

func integerString(v any) (string, bool) {
	if isInteger(v) {
		return fmt.Sprintf("%d", v), true
	}
	if f, ok := toFloat64(v); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64), true
	}
	return "", false
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case interface{ Float64() (float64, error) }: // json.Number
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
