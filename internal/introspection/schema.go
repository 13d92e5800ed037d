package introspection

import (
	"slices"

	schema "github.com/hanpama/gqlengine/internal/schema"
)

// extend copies sch, adds the introspection types and gives the query root
// the __schema and __type fields. The original schema is left untouched.
func extend(sch *schema.Schema) *schema.Schema {
	out := schema.NewSchema(sch.Description).
		SetQueryType(sch.QueryType).
		SetMutationType(sch.MutationType).
		SetSubscriptionType(sch.SubscriptionType)
	for _, t := range sch.Types {
		out.AddType(t)
	}
	for _, d := range sch.Directives {
		out.AddDirective(d)
	}
	for _, t := range metaTypes() {
		out.AddType(t)
	}

	if query := sch.GetQueryType(); query != nil {
		root := *query
		root.Fields = append(slices.Clone(query.Fields),
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.", named("__Type")).
				AddArgument(schema.NewInputValue("name", "", nonNull("String"))),
		)
		out.AddType(&root)
	}
	return out
}

func named(name string) *schema.TypeRef   { return schema.NamedType(name) }
func nonNull(name string) *schema.TypeRef { return schema.NonNullType(named(name)) }

// listOf is [name!] with an optional outer Non-Null.
func listOf(name string, required bool) *schema.TypeRef {
	t := schema.ListType(nonNull(name))
	if required {
		return schema.NonNullType(t)
	}
	return t
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", named("Boolean")).SetDefault(false)
}

func metaTypes() []*schema.Type {
	object := func(name, description string) *schema.Type {
		return schema.NewType(name, schema.TypeKindObject, description)
	}
	field := func(name string, t *schema.TypeRef) *schema.Field {
		return schema.NewField(name, "", t)
	}

	schemaType := object("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.").
		AddField(field("description", named("String"))).
		AddField(schema.NewField("types", "A list of all types supported by this server.", listOf("__Type", true))).
		AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull("__Type"))).
		AddField(schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", named("__Type"))).
		AddField(schema.NewField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", named("__Type"))).
		AddField(schema.NewField("directives", "A list of all directives supported by this server.", listOf("__Directive", true)))

	typeType := object("__Type", "The fundamental unit of any GraphQL Schema is the type.").
		AddField(field("kind", nonNull("__TypeKind"))).
		AddField(field("name", named("String"))).
		AddField(field("description", named("String"))).
		AddField(field("specifiedByURL", named("String"))).
		AddField(field("fields", listOf("__Field", false)).AddArgument(includeDeprecated())).
		AddField(field("interfaces", listOf("__Type", false))).
		AddField(field("possibleTypes", listOf("__Type", false))).
		AddField(field("enumValues", listOf("__EnumValue", false)).AddArgument(includeDeprecated())).
		AddField(field("inputFields", listOf("__InputValue", false)).AddArgument(includeDeprecated())).
		AddField(field("ofType", named("__Type"))).
		AddField(field("isOneOf", named("Boolean")))

	fieldType := object("__Field", "").
		AddField(field("name", nonNull("String"))).
		AddField(field("description", named("String"))).
		AddField(field("args", listOf("__InputValue", true)).AddArgument(includeDeprecated())).
		AddField(field("type", nonNull("__Type"))).
		AddField(field("isDeprecated", nonNull("Boolean"))).
		AddField(field("deprecationReason", named("String")))

	inputValueType := object("__InputValue", "").
		AddField(field("name", nonNull("String"))).
		AddField(field("description", named("String"))).
		AddField(field("type", nonNull("__Type"))).
		AddField(schema.NewField("defaultValue", "A GraphQL-formatted string representing the default value for this input value.", named("String"))).
		AddField(field("isDeprecated", nonNull("Boolean"))).
		AddField(field("deprecationReason", named("String")))

	enumValueType := object("__EnumValue", "").
		AddField(field("name", nonNull("String"))).
		AddField(field("description", named("String"))).
		AddField(field("isDeprecated", nonNull("Boolean"))).
		AddField(field("deprecationReason", named("String")))

	directiveType := object("__Directive", "").
		AddField(field("name", nonNull("String"))).
		AddField(field("description", named("String"))).
		AddField(field("isRepeatable", nonNull("Boolean"))).
		AddField(field("locations", listOf("__DirectiveLocation", true))).
		AddField(field("args", listOf("__InputValue", true)).AddArgument(includeDeprecated()))

	return []*schema.Type{
		schemaType, typeType, fieldType, inputValueType, enumValueType, directiveType,
		enum("__TypeKind", "SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"),
		enum("__DirectiveLocation",
			"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
			"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
			"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
			"INPUT_FIELD_DEFINITION"),
	}
}

func enum(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}
