package executor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

const inputSDL = `
	enum Color { RED GREEN }
	input Point { x: Int! y: Int = 5 }
	input Pick { a: Int b: String }
	type Query { f(v: Int): Int }`

// parseValue parses a literal by placing it in an argument position.
func parseValue(t *testing.T, literal string) *ast.Value {
	t.Helper()
	doc := mustParseQuery(t, "{ f(v: "+literal+") }")
	return doc.Operations[0].SelectionSet[0].(*ast.Field).Arguments[0].Value
}

func variableDefs(t *testing.T, query string) ast.VariableDefinitionList {
	t.Helper()
	return mustParseQuery(t, query).Operations[0].VariableDefinitions
}

var (
	intRef   = schema.NamedType("Int")
	pointRef = schema.NamedType("Point")
)

func TestCoerceInputValue(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)

	tests := []struct {
		name  string
		value any
		typ   *schema.TypeRef
		want  any
	}{
		{"int from float64", float64(3), intRef, 3},
		{"single value to list", 4, schema.ListType(intRef), []any{4}},
		{"typed slice", []int{1, 2}, schema.ListType(intRef), []any{1, 2}},
		{"null in nullable list", []any{1, nil}, schema.ListType(intRef), []any{1, nil}},
		{"enum by name", "GREEN", schema.NamedType("Color"), "GREEN"},
		{"input object default", map[string]any{"x": 1}, pointRef, map[string]any{"x": 1, "y": 5}},
		{"explicit null field", map[string]any{"x": 1, "y": nil}, pointRef, map[string]any{"x": 1, "y": nil}},
		{"null", nil, intRef, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceInputValue(tt.value, tt.typ, sch, nil)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("coerced mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerceInputValue_Idempotent(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)
	typ := schema.ListType(schema.NonNullType(pointRef))

	once, err := CoerceInputValue([]any{map[string]any{"x": 1}, map[string]any{"x": 2, "y": 3}}, typ, sch, nil)
	require.NoError(t, err)
	twice, err := CoerceInputValue(once, typ, sch, nil)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestCoerceInputValue_Errors(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)

	tests := []struct {
		name  string
		value any
		typ   *schema.TypeRef
		want  string
	}{
		{"non-null", nil, schema.NonNullType(intRef), `Invalid value null: Expected non-nullable type "Int!" not to be null.`},
		{"list item", []any{1, "x"}, schema.ListType(intRef), `Invalid value "x" at "value[1]": Int cannot represent non-integer value: "x"`},
		{"nested field", map[string]any{"x": true}, pointRef, `Invalid value true at "value.x": Int cannot represent non-integer value: true`},
		{"missing field", map[string]any{}, pointRef, `Invalid value {}: Field "x" of required type "Int!" was not provided.`},
		{"unknown field", map[string]any{"x": 1, "xx": 2}, pointRef, `Invalid value {"x":1,"xx":2}: Field "xx" is not defined by type "Point". Did you mean "x"?`},
		{"not an object", 3, pointRef, `Invalid value 3: Expected type "Point" to be an object.`},
		{"unknown enum", "BLUE", schema.NamedType("Color"), `Invalid value "BLUE": Value "BLUE" does not exist in "Color" enum.`},
		{"output type", 1, schema.NamedType("Query"), `Invalid value 1: Type "Query" is not an input type.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceInputValue(tt.value, tt.typ, sch, nil)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestCoerceInputValue_CollectsEveryError(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)

	type report struct {
		Path    Path
		Invalid any
		Message string
	}
	var reports []report
	_, err := CoerceInputValue([]any{"a", 2, map[string]any{}}, schema.ListType(intRef), sch,
		func(path Path, invalidValue any, gqlErr *GraphQLError) error {
			reports = append(reports, report{path, invalidValue, gqlErr.Message})
			return nil
		})
	require.NoError(t, err)

	want := []report{
		{Path{0}, "a", `Int cannot represent non-integer value: "a"`},
		{Path{2}, map[string]any{}, `Int cannot represent non-integer value: {}`},
	}
	if diff := cmp.Diff(want, reports); diff != "" {
		t.Fatalf("reports mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceInputValue_OneOf(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)
	sch.GetType("Pick").SetOneOf(true)
	pick := schema.NamedType("Pick")

	got, err := CoerceInputValue(map[string]any{"a": 1}, pick, sch, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": 1}, got)

	_, err = CoerceInputValue(map[string]any{"a": 1, "b": "x"}, pick, sch, nil)
	require.EqualError(t, err, `Invalid value {"a":1,"b":"x"}: Exactly one key must be specified for OneOf type "Pick".`)

	_, err = CoerceInputValue(map[string]any{"a": nil}, pick, sch, nil)
	require.EqualError(t, err, `Invalid value {"a":null}: Field "a" must be non-null.`)
}

func TestValueFromAST(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)
	vars := map[string]any{"int": 7, "null": nil}

	tests := []struct {
		literal string
		typ     *schema.TypeRef
		want    any
		ok      bool
	}{
		{"3", intRef, 3, true},
		{`"3"`, intRef, nil, false},
		{"null", intRef, nil, true},
		{"null", schema.NonNullType(intRef), nil, false},
		{"$int", schema.NonNullType(intRef), 7, true},
		{"$null", schema.NonNullType(intRef), nil, false},
		{"$missing", intRef, nil, false},
		{"4", schema.ListType(intRef), []any{4}, true},
		{"[1, $missing, 3]", schema.ListType(intRef), []any{1, nil, 3}, true},
		{"[1, $missing]", schema.ListType(schema.NonNullType(intRef)), nil, false},
		{"{x: 1}", pointRef, map[string]any{"x": 1, "y": 5}, true},
		{"{x: 1, y: $missing}", pointRef, map[string]any{"x": 1, "y": 5}, true},
		{"{y: 1}", pointRef, nil, false},
		{"RED", schema.NamedType("Color"), "RED", true},
		{`"RED"`, schema.NamedType("Color"), nil, false},
		{"BLUE", schema.NamedType("Color"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.literal+" as "+tt.typ.String(), func(t *testing.T) {
			got, ok := ValueFromAST(parseValue(t, tt.literal), tt.typ, sch, vars)
			require.Equal(t, tt.ok, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValueFromASTUntyped(t *testing.T) {
	got := ValueFromASTUntyped(parseValue(t, `{a: [1, 2.5, "s", true, null, ENUM], b: $v}`), map[string]any{"v": "V"})
	want := map[string]any{"a": []any{1, 2.5, "s", true, nil, "ENUM"}, "b": "V"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceVariableValues(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)
	defs := variableDefs(t, "query ($a: Int = 3, $b: String!, $c: Point, $d: [Color]) { f }")

	got, errs := CoerceVariableValues(sch, defs, map[string]any{"b": "x", "d": "RED"}, 0)
	require.Empty(t, errs)
	require.Equal(t, map[string]any{"a": 3, "b": "x", "d": []any{"RED"}}, got)

	got, errs = CoerceVariableValues(sch, defs, map[string]any{"a": nil, "b": "x"}, 0)
	require.Empty(t, errs)
	require.Equal(t, map[string]any{"a": nil, "b": "x"}, got)
}

func TestCoerceVariableValues_Errors(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)

	tests := []struct {
		name   string
		query  string
		inputs map[string]any
		want   []string
	}{
		{
			name:  "missing required",
			query: "query ($b: String!) { f }",
			want:  []string{`Variable "$b" of required type "String!" was not provided.`},
		},
		{
			name:   "null for non-null",
			query:  "query ($b: String!) { f }",
			inputs: map[string]any{"b": nil},
			want:   []string{`Variable "$b" of non-null type "String!" must not be null.`},
		},
		{
			name:  "output type",
			query: "query ($o: Query) { f }",
			want:  []string{`Variable "$o" expected value of type "Query" which cannot be used as an input type.`},
		},
		{
			name:   "nested invalid",
			query:  "query ($c: Point) { f }",
			inputs: map[string]any{"c": map[string]any{"x": "a"}},
			want:   []string{`Variable "$c" got invalid value "a" at "c.x"; Int cannot represent non-integer value: "a"`},
		},
		{
			name:   "unknown field",
			query:  "query ($c: Point) { f }",
			inputs: map[string]any{"c": map[string]any{"x": 1, "xx": 2}},
			want:   []string{`Variable "$c" got invalid value {"x":1,"xx":2}; Field "xx" is not defined by type "Point". Did you mean "x"?`},
		},
		{
			name:   "several variables",
			query:  "query ($a: Int, $b: String!, $c: Point) { f }",
			inputs: map[string]any{"a": "one", "c": map[string]any{}},
			want: []string{
				`Variable "$a" got invalid value "one"; Int cannot represent non-integer value: "one"`,
				`Variable "$b" of required type "String!" was not provided.`,
				`Variable "$c" got invalid value {}; Field "x" of required type "Int!" was not provided.`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := tt.inputs
			if inputs == nil {
				inputs = map[string]any{}
			}
			got, errs := CoerceVariableValues(sch, variableDefs(t, tt.query), inputs, 0)
			require.Nil(t, got)
			var messages []string
			for _, err := range errs {
				messages = append(messages, err.Message)
				require.NotEmpty(t, err.Locations)
			}
			require.Equal(t, tt.want, messages)
		})
	}
}

func TestCoerceVariableValues_ErrorLimit(t *testing.T) {
	sch := mustBuildSchema(t, inputSDL)
	defs := variableDefs(t, "query ($list: [Int!]) { f }")
	inputs := map[string]any{"list": []any{"a", "b", "c"}}

	_, errs := CoerceVariableValues(sch, defs, inputs, 0)
	require.Len(t, errs, 3)

	_, errs = CoerceVariableValues(sch, defs, inputs, 2)
	require.Len(t, errs, 3)
	require.Equal(t, "Too many errors processing variables, error limit reached. Execution aborted.", errs[2].Message)
	require.Empty(t, errs[2].Locations)
}

func TestCoerceArgumentValues(t *testing.T) {
	sch := mustBuildSchema(t, `
		input Point { x: Int! y: Int = 5 }
		type Query {
			f(req: Int!, opt: Int = 10, point: Point, list: [Int]): Int
		}`)
	defs := sch.GetQueryType().Field("f").Arguments
	args := func(t *testing.T, query string) ast.ArgumentList {
		return mustParseQuery(t, query).Operations[0].SelectionSet[0].(*ast.Field).Arguments
	}

	tests := []struct {
		name  string
		query string
		vars  map[string]any
		want  map[string]any
	}{
		{"defaults", "{ f(req: 1) }", nil, map[string]any{"req": 1, "opt": 10}},
		{"explicit null", "{ f(req: 1, opt: null) }", nil, map[string]any{"req": 1, "opt": nil}},
		{"missing variable uses default", "query ($o: Int) { f(req: 1, opt: $o) }", map[string]any{}, map[string]any{"req": 1, "opt": 10}},
		{"variable", "query ($r: Int!) { f(req: $r) }", map[string]any{"r": 2}, map[string]any{"req": 2, "opt": 10}},
		{"input object", "{ f(req: 1, point: {x: 2}) }", nil, map[string]any{"req": 1, "opt": 10, "point": map[string]any{"x": 2, "y": 5}}},
		{"list coercion", "{ f(req: 1, list: 3) }", nil, map[string]any{"req": 1, "opt": 10, "list": []any{3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceArgumentValues(sch, defs, args(t, tt.query), tt.vars)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}

	errTests := []struct {
		name  string
		query string
		vars  map[string]any
		want  string
	}{
		{"missing required", "{ f }", nil, `Argument "req" of required type "Int!" was not provided.`},
		{"null for non-null", "{ f(req: null) }", nil, `Argument "req" of non-null type "Int!" must not be null.`},
		{"null variable for non-null", "query ($r: Int) { f(req: $r) }", map[string]any{"r": nil}, `Argument "req" of non-null type "Int!" must not be null.`},
		{"invalid literal", `{ f(req: "x") }`, nil, `Argument "req" has invalid value "x".`},
		{"invalid object", "{ f(req: 1, point: {y: 1}) }", nil, `Argument "point" has invalid value {y:1}.`},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceArgumentValues(sch, defs, args(t, tt.query), tt.vars)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestSuggestions(t *testing.T) {
	require.Equal(t, []string{"color", "colour"}, suggestionList("colr", []string{"size", "colour", "color"}))
	require.Equal(t, []string{"red"}, suggestionList("RED", []string{"red", "blue"}))
	require.Empty(t, suggestionList("zzz", []string{"red", "blue"}))

	require.Equal(t, "", didYouMean(nil))
	require.Equal(t, ` Did you mean "a"?`, didYouMean([]string{"a"}))
	require.Equal(t, ` Did you mean "a" or "b"?`, didYouMean([]string{"a", "b"}))
	require.Equal(t, ` Did you mean "a", "b", "c", "d", or "e"?`, didYouMean([]string{"a", "b", "c", "d", "e", "f"}))
}
