package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"
	"github.com/stretchr/testify/require"
)

// Pattern: Result comparison
func TestStarWars_HeroName(t *testing.T) {
	exec, _ := newStarWars(t)
	doc := mustParseQuery(t, `query HeroNameQuery { hero { name } }`)

	res, err := exec.Execute(context.Background(), Params{Document: doc})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"hero":{"name":"R2-D2"}}}`, mustJSON(t, res))
}

// Pattern: Result comparison
func TestStarWars_NestedFriendsAndTypename(t *testing.T) {
	exec, _ := newStarWars(t)
	doc := mustParseQuery(t, `
		query {
			hero(episode: EMPIRE) {
				__typename
				id
				name
				appearsIn
				friends {
					__typename
					name
					... on Droid { primaryFunction }
					... on Human { homePlanet }
				}
			}
		}`)

	res, err := exec.Execute(context.Background(), Params{Document: doc})
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"hero": map[string]any{
			"__typename": "Human",
			"id":         "1000",
			"name":       "Luke Skywalker",
			"appearsIn":  []any{"NEWHOPE", "EMPIRE", "JEDI"},
			"friends": []any{
				map[string]any{"__typename": "Human", "name": "Han Solo", "homePlanet": ""},
				map[string]any{"__typename": "Human", "name": "Leia Organa", "homePlanet": "Alderaan"},
				map[string]any{"__typename": "Droid", "name": "R2-D2", "primaryFunction": "Astromech"},
			},
		},
	}
	if diff := cmp.Diff(want, res.Data.ToMap()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestStarWars_SecretBackstory(t *testing.T) {
	exec, _ := newStarWars(t)
	doc := mustParseQuery(t, `{ hero { name secretBackstory } }`)

	res, err := exec.Execute(context.Background(), Params{Document: doc})
	require.NoError(t, err)

	require.Equal(t, `{"hero":{"name":"R2-D2","secretBackstory":null}}`, mustJSON(t, res.Data))
	require.Len(t, res.Errors, 1)
	got := res.Errors[0]
	require.Equal(t, "secretBackstory is secret.", got.Message)
	require.Equal(t, Path{"hero", "secretBackstory"}, got.Path)
	require.Len(t, got.Locations, 1)
	require.Equal(t, 1, got.Locations[0].Line)
	require.EqualError(t, errors.Unwrap(got), "secretBackstory is secret.")
}

// Pattern: Result comparison
func TestStarWars_SecretBackstoryInList(t *testing.T) {
	exec, _ := newStarWars(t)
	doc := mustParseQuery(t, `{ hero { name friends { name secretBackstory } } }`)

	res, err := exec.Execute(context.Background(), Params{Document: doc})
	require.NoError(t, err)
	require.Equal(t, []string{
		"[hero friends 0 secretBackstory]: secretBackstory is secret.",
		"[hero friends 1 secretBackstory]: secretBackstory is secret.",
		"[hero friends 2 secretBackstory]: secretBackstory is secret.",
	}, errorsOf(res))
	require.Equal(t,
		`{"hero":{"name":"R2-D2","friends":[{"name":"Luke Skywalker","secretBackstory":null},{"name":"Han Solo","secretBackstory":null},{"name":"Leia Organa","secretBackstory":null}]}}`,
		mustJSON(t, res.Data))
}

// Pattern: Result comparison
func TestStarWars_AliasesAndVariables(t *testing.T) {
	exec, _ := newStarWars(t)
	doc := mustParseQuery(t, `
		query Fetch($someId: String!) {
			luke: human(id: "1000") { name }
			other: human(id: $someId) { name }
			droid(id: $someId) { name }
		}`)

	res, err := exec.Execute(context.Background(), Params{
		Document:       doc,
		VariableValues: map[string]any{"someId": "1002"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"luke":{"name":"Luke Skywalker"},"other":{"name":"Han Solo"},"droid":null}}`, mustJSON(t, res))
}

// Pattern: Result comparison
func TestOrdering_KeysFollowSelectionNotSettleOrder(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `type Query { a: String b: String c: String }`)
	delayed := func(val string, d time.Duration) MockResolver {
		return func(ctx context.Context, source any, args map[string]any) (any, error) {
			return Go(ctx, func(ctx context.Context) (any, error) {
				time.Sleep(d)
				return val, nil
			}), nil
		}
	}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a": delayed("A", 30*time.Millisecond),
		"Query.b": delayed("B", 15*time.Millisecond),
		"Query.c": delayed("C", 0),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ c a b }")})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"c":"C","a":"A","b":"B"}}`, mustJSON(t, res))

	// resolvers are called in selection order before anything settles
	wantCalls := []Call{
		{Kind: CallKindResolve, ObjectType: "Query", Field: "c", Args: map[string]any{}},
		{Kind: CallKindResolve, ObjectType: "Query", Field: "a", Args: map[string]any{}},
		{Kind: CallKindResolve, ObjectType: "Query", Field: "b", Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestOrdering_FragmentMerge(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { obj: Obj }
		type Obj { a: String b: String c: String }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.obj": NewMockValueResolver(map[string]any{"a": "A", "b": "B", "c": "C"}),
	})
	exec := NewExecutor(rt, sch)
	doc := mustParseQuery(t, `
		{ obj { b ...F a } obj { c } }
		fragment F on Obj { a c b }`)

	res, err := exec.Execute(context.Background(), Params{Document: doc})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"obj":{"b":"B","a":"A","c":"C"}}}`, mustJSON(t, res))
	// the merged group is resolved once
	require.Len(t, rt.CallsTo("Query.obj"), 1)
}

// Pattern: Result comparison
func TestNonNull_PropagatesToNearestNullable(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { obj: Obj other: String }
		type Obj { a: String! b: String }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.obj":   NewMockValueResolver(map[string]any{"a": nil, "b": "B"}),
		"Query.other": NewMockValueResolver("O"),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ obj { a b } other }")})
	require.NoError(t, err)
	require.Equal(t, `{"obj":null,"other":"O"}`, mustJSON(t, res.Data))
	require.Equal(t, []string{"[obj a]: Cannot return null for non-nullable field Obj.a."}, errorsOf(res))
}

// Pattern: Result comparison
func TestNonNull_ResolverErrorClimbsSeveralLevels(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { outer: Outer }
		type Outer { inner: Inner! }
		type Inner { leaf: String! }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.outer": NewMockValueResolver(map[string]any{}),
		"Outer.inner": NewMockValueResolver(map[string]any{}),
		"Inner.leaf":  NewMockErrorResolver(errors.New("boom")),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ outer { inner { leaf } } }")})
	require.NoError(t, err)
	require.Equal(t, `{"outer":null}`, mustJSON(t, res.Data))
	require.Equal(t, []string{"[outer inner leaf]: boom"}, errorsOf(res))
}

// Pattern: Result comparison
func TestNonNull_RootViolationNullsData(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { req: String! opt: String }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.req": NewMockValueResolver(nil),
		"Query.opt": NewMockValueResolver("x"),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ opt req }")})
	require.NoError(t, err)
	require.Nil(t, res.Data)
	require.Equal(t, []string{"[req]: Cannot return null for non-nullable field Query.req."}, errorsOf(res))
	require.Equal(t,
		`{"data":null,"errors":[{"message":"Cannot return null for non-nullable field Query.req.","locations":[{"line":1,"column":7}],"path":["req"]}]}`,
		mustJSON(t, res))
}

// Pattern: Result comparison
func TestNonNull_SiblingErrorsAreAllLogged(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `
		type Query { obj: Obj }
		type Obj { req: String! opt: String slow: String }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.obj": NewMockValueResolver(map[string]any{}),
		"Obj.req":   NewMockErrorResolver(errors.New("req failed")),
		"Obj.opt":   NewMockErrorResolver(errors.New("opt failed")),
		"Obj.slow": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return Go(ctx, func(ctx context.Context) (any, error) {
				time.Sleep(10 * time.Millisecond)
				return nil, errors.New("slow failed")
			}), nil
		},
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ obj { slow opt req } }")})
	require.NoError(t, err)
	require.Equal(t, `{"obj":null}`, mustJSON(t, res.Data))
	require.Equal(t, []string{
		"[obj opt]: opt failed",
		"[obj req]: req failed",
		"[obj slow]: slow failed",
	}, errorsOf(res))
}

func TestNonNull_AsyncFailureKeepsLaterSiblings(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `
		scalar Gate
		type Query { a: Obj! c: Gate b: Other }
		type Obj { x: String! }
		type Other { y: String }`)
	reached := make(chan struct{})
	sch.GetType("Gate").Serializer = func(v any) (any, error) {
		// hold the launch loop until a has failed
		<-reached
		time.Sleep(20 * time.Millisecond)
		return v, nil
	}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return Go(ctx, func(context.Context) (any, error) { return map[string]any{}, nil }), nil
		},
		"Query.c": NewMockValueResolver("open"),
		"Query.b": NewMockValueResolver(map[string]any{}),
		"Obj.x": func(context.Context, any, map[string]any) (any, error) {
			close(reached)
			return nil, nil
		},
		"Other.y": NewMockErrorResolver(errors.New("b.y failed")),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ a { x } c b { y } }")})
	require.NoError(t, err)
	require.Nil(t, res.Data)
	require.Equal(t, []string{
		"[a x]: Cannot return null for non-nullable field Obj.x.",
		"[b y]: b.y failed",
	}, errorsOf(res))
	require.Len(t, rt.CallsTo("Other.y"), 1)
}

func TestNilFutureIsNull(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `
		type Query { a: String b: Obj req: String! }
		type Obj { c: String }`)
	nilFuture := func(context.Context, any, map[string]any) (any, error) {
		var f *Future
		return f, nil
	}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a":   nilFuture,
		"Query.b":   NewMockValueResolver(map[string]any{}),
		"Query.req": nilFuture,
		"Obj.c":     nilFuture,
	})
	exec := NewExecutor(rt, sch)

	var res *ExecutionResult
	require.NotPanics(t, func() {
		var err error
		res, err = exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ a b { c } }")})
		require.NoError(t, err)
	})
	require.Equal(t, `{"data":{"a":null,"b":{"c":null}}}`, mustJSON(t, res))

	res, err := exec.ExecuteSync(context.Background(), Params{Document: mustParseQuery(t, "{ a req }")})
	require.NoError(t, err)
	require.Nil(t, res.Data)
	require.Equal(t, []string{"[req]: Cannot return null for non-nullable field Query.req."}, errorsOf(res))
}

// Pattern: Result comparison
func TestMutation_RootFieldsRunSerially(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { noop: String }
		type Mutation { first: String second: String }`)

	var (
		mu  sync.Mutex
		log []string
	)
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.first": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return Go(ctx, func(ctx context.Context) (any, error) {
				time.Sleep(20 * time.Millisecond)
				record("first")
				return "1", nil
			}), nil
		},
		"Mutation.second": func(ctx context.Context, source any, args map[string]any) (any, error) {
			record("second")
			return "2", nil
		},
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "mutation { first second }")})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"first":"1","second":"2"}}`, mustJSON(t, res))
	require.Equal(t, []string{"first", "second"}, log)
}

// Pattern: Result comparison
func TestQuery_RootFieldsResolveBeforeSettling(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `type Query { first: String second: String }`)
	var (
		mu  sync.Mutex
		log []string
	)
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.first": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return Go(ctx, func(ctx context.Context) (any, error) {
				time.Sleep(20 * time.Millisecond)
				record("first")
				return "1", nil
			}), nil
		},
		"Query.second": func(ctx context.Context, source any, args map[string]any) (any, error) {
			record("second")
			return "2", nil
		},
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ first second }")})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"first":"1","second":"2"}}`, mustJSON(t, res))
	require.Equal(t, []string{"second", "first"}, log)
}

func TestRootTypeErrors(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	exec := NewExecutor(nil, sch)

	tests := []struct {
		query string
		want  string
	}{
		{"mutation { a }", "Schema is not configured for mutations."},
		{"subscription { a }", "Schema is not configured for subscriptions."},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, tt.query)})
			require.NoError(t, err)
			require.Nil(t, res.Data)
			require.False(t, res.DataOmitted)
			require.Equal(t, []string{"[]: " + tt.want}, errorsOf(res))
		})
	}
}

func TestOperationSelection(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	exec := NewExecutor(nil, sch)
	root := map[string]any{"a": "A"}

	t.Run("sole operation", func(t *testing.T) {
		res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "query Q { a }"), RootValue: root})
		require.NoError(t, err)
		require.Equal(t, `{"data":{"a":"A"}}`, mustJSON(t, res))
	})

	t.Run("named operation", func(t *testing.T) {
		doc := mustParseQuery(t, "query Q1 { a } query Q2 { b: a }")
		res, err := exec.Execute(context.Background(), Params{Document: doc, OperationName: "Q2", RootValue: root})
		require.NoError(t, err)
		require.Equal(t, `{"data":{"b":"A"}}`, mustJSON(t, res))
	})

	tests := []struct {
		name  string
		query string
		op    string
		want  string
	}{
		{"no operation", "fragment F on Query { a }", "", "Must provide an operation."},
		{"ambiguous", "query Q1 { a } query Q2 { a }", "", "Must provide operation name if query contains multiple operations."},
		{"unknown name", "query Q1 { a }", "Nope", `Unknown operation named "Nope".`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, tt.query), OperationName: tt.op})
			require.NoError(t, err)
			require.True(t, res.DataOmitted)
			require.Equal(t, []string{"[]: " + tt.want}, errorsOf(res))
			require.Equal(t, `{"errors":[{"message":`+jsonString(t, tt.want)+`}]}`, mustJSON(t, res))
		})
	}
}

func jsonString(t *testing.T, s string) string { return mustJSON(t, s) }

func TestUsageErrors(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)

	_, err := NewExecutor(nil, nil).Execute(context.Background(), Params{Document: mustParseQuery(t, "{ a }")})
	require.ErrorIs(t, err, ErrMissingSchema)
	require.True(t, IsUsageError(err))

	_, err = NewExecutor(nil, sch).Execute(context.Background(), Params{})
	require.ErrorIs(t, err, ErrMissingDocument)

	res := NewExecutor(nil, sch).ExecuteRequest(context.Background(), nil, "", nil, nil)
	require.True(t, res.DataOmitted)
	require.Equal(t, ErrMissingDocument, res.Errors[0].Err)
}

func TestVariableErrorsSkipResolvers(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { echo(n: Int): Int }`)
	rt := NewMockRuntime(nil)
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{
		Document:       mustParseQuery(t, "query ($n: Int!) { echo(n: $n) }"),
		VariableValues: map[string]any{},
	})
	require.NoError(t, err)
	require.True(t, res.DataOmitted)
	require.Equal(t, []string{`[]: Variable "$n" of required type "Int!" was not provided.`}, errorsOf(res))
	require.Empty(t, rt.GetCalls())
}

func TestMaxVariableErrors(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { sum(list: [Int!]): Int }`)
	exec := NewExecutor(nil, sch, WithMaxVariableErrors(2))

	res, err := exec.Execute(context.Background(), Params{
		Document:       mustParseQuery(t, "query ($list: [Int!]) { sum(list: $list) }"),
		VariableValues: map[string]any{"list": []any{"a", "b", "c"}},
	})
	require.NoError(t, err)
	require.True(t, res.DataOmitted)
	require.Len(t, res.Errors, 3)
	require.Equal(t, `Variable "$list" got invalid value "a" at "list[0]"; Int cannot represent non-integer value: "a"`, res.Errors[0].Message)
	require.Equal(t, `Variable "$list" got invalid value "b" at "list[1]"; Int cannot represent non-integer value: "b"`, res.Errors[1].Message)
	require.Equal(t, "Too many errors processing variables, error limit reached. Execution aborted.", res.Errors[2].Message)
}

func TestArgumentErrorIsFieldError(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { echo(n: Int!): Int other: String }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.other": NewMockValueResolver("ok"),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{
		Document: mustParseQuery(t, "query ($n: Int) { echo(n: $n) other }"),
	})
	require.NoError(t, err)
	require.Equal(t, `{"echo":null,"other":"ok"}`, mustJSON(t, res.Data))
	require.Equal(t, []string{
		`[echo]: Argument "n" of required type "Int!" was provided the variable "$n" which was not provided a runtime value.`,
	}, errorsOf(res))
	require.Len(t, rt.CallsTo("Query.echo"), 0)
}

func TestPanicsBecomeFieldErrors(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { value: String err: String nested: [String] }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.value": func(context.Context, any, map[string]any) (any, error) { panic("oops") },
		"Query.err":   func(context.Context, any, map[string]any) (any, error) { panic(errors.New("bad")) },
		"Query.nested": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return []any{"x", Go(ctx, func(context.Context) (any, error) { panic(42) })}, nil
		},
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.Execute(context.Background(), Params{Document: mustParseQuery(t, "{ value err nested }")})
	require.NoError(t, err)
	require.Equal(t, `{"value":null,"err":null,"nested":["x",null]}`, mustJSON(t, res.Data))
	require.Equal(t, []string{
		"[err]: bad",
		"[nested 1]: Unexpected error value: 42",
		`[value]: Unexpected error value: "oops"`,
	}, errorsOf(res))

	var unexpected *UnexpectedError
	for _, e := range res.Errors {
		if e.Path[0] == "value" {
			require.ErrorAs(t, e, &unexpected)
			require.Equal(t, "oops", unexpected.Value)
		}
	}
}

func TestExecuteSync(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `type Query { now: String later: String }`)
	release := make(chan struct{})
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.now":   func(context.Context, any, map[string]any) (any, error) { return Resolved("N"), nil },
		"Query.later": NewMockFutureResolver("L", release),
	})
	exec := NewExecutor(rt, sch)

	res, err := exec.ExecuteSync(context.Background(), Params{Document: mustParseQuery(t, "{ now }")})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"now":"N"}}`, mustJSON(t, res))

	res, err = exec.ExecuteSync(context.Background(), Params{Document: mustParseQuery(t, "{ now later }")})
	require.ErrorIs(t, err, ErrNotSynchronous)
	require.Nil(t, res)
	close(release)
}

func TestCancellationSurfacesAsFieldError(t *testing.T) {
	defer leaktest.Check(t)()

	sch := mustBuildSchema(t, `type Query { slow: String }`)
	never := make(chan struct{})
	defer close(never)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.slow": NewMockFutureResolver("S", never),
	})
	exec := NewExecutor(rt, sch)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res, err := exec.Execute(ctx, Params{Document: mustParseQuery(t, "{ slow }")})
	require.NoError(t, err)
	require.Equal(t, `{"slow":null}`, mustJSON(t, res.Data))
	require.Equal(t, []string{"[slow]: context deadline exceeded"}, errorsOf(res))
}

func TestUnknownFieldsAreLeftOut(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	exec := NewExecutor(nil, sch)

	res, err := exec.Execute(context.Background(), Params{
		Document:  mustParseQuery(t, "{ a missing }"),
		RootValue: map[string]any{"a": "A", "missing": "M"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"data":{"a":"A"}}`, mustJSON(t, res))
}

func TestResolveInfo(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { obj: Obj }
		type Obj { f(x: Int = 3): Int }`)
	var got *ResolveInfo
	var gotArgs map[string]any
	rm := NewResolverMap().Field("Obj", "f", func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
		got, gotArgs = info, args
		return 1, nil
	})
	exec := NewExecutor(rm, sch)

	doc := mustParseQuery(t, "query Op($v: Int) { obj { alias: f } }")
	res, err := exec.Execute(context.Background(), Params{
		Document:       doc,
		VariableValues: map[string]any{"v": 7},
		RootValue:      map[string]any{"obj": map[string]any{}},
		ContextValue:   "ctx-value",
	})
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	require.Equal(t, "f", got.FieldName)
	require.Equal(t, "Obj", got.ParentType.Name)
	require.Equal(t, "Int", got.ReturnType.String())
	require.Equal(t, "obj.alias", got.Path.String())
	require.Equal(t, "Obj", got.Path.Typename)
	require.Equal(t, "Op", got.Operation.Name)
	require.Equal(t, map[string]any{"v": 7}, got.VariableValues)
	require.Equal(t, "ctx-value", got.ContextValue)
	require.Same(t, sch, got.Schema)
	require.Len(t, got.FieldNodes, 1)
	require.Equal(t, map[string]any{"x": 3}, gotArgs)
}

func TestExecute_PublishesEvents(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var (
		starts     []events.ExecutionStart
		finishes   []events.ExecutionFinish
		fieldErrs  []events.FieldError
		requestIDs []string
	)
	defer eventbus.SubscribeOn(bus, func(ctx context.Context, e events.ExecutionStart) {
		id, _ := reqid.FromContext(ctx)
		requestIDs = append(requestIDs, id)
		starts = append(starts, e)
	})()
	defer eventbus.SubscribeOn(bus, func(ctx context.Context, e events.ExecutionFinish) {
		finishes = append(finishes, e)
	})()
	defer eventbus.SubscribeOn(bus, func(ctx context.Context, e events.FieldError) {
		fieldErrs = append(fieldErrs, e)
	})()

	exec, _ := newStarWars(t)
	ctx, id := reqid.NewContext(context.Background())
	_, err := exec.Execute(ctx, Params{Document: mustParseQuery(t, `query Backstory { hero { secretBackstory } }`)})
	require.NoError(t, err)

	require.Equal(t, []events.ExecutionStart{{OperationName: "Backstory", OperationType: "query"}}, starts)
	require.Equal(t, []string{id}, requestIDs)
	require.Len(t, finishes, 1)
	require.False(t, finishes[0].DataOmitted)
	require.Len(t, finishes[0].Errors, 1)
	require.EqualError(t, finishes[0].Errors[0], "secretBackstory is secret.")
	require.Equal(t, []events.FieldError{{
		Path:    "hero.secretBackstory",
		Message: "secretBackstory is secret.",
		Err:     finishes[0].Errors[0].(*GraphQLError).Err,
	}}, fieldErrs)

	// a request without an id gets one
	requestIDs = nil
	_, err = exec.Execute(context.Background(), Params{Document: mustParseQuery(t, `{ hero { name } }`)})
	require.NoError(t, err)
	require.Len(t, requestIDs, 1)
	require.NotEmpty(t, requestIDs[0])
	require.NotEqual(t, id, requestIDs[0])
}
