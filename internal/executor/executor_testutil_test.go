package executor

import (
	"encoding/json"
	"fmt"
	"sort"
	"testing"

	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *ast.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// mustBuildSchema builds a schema from SDL and fails the test on error.
func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL("test.graphql", sdl)
	require.NoError(t, err)
	return s
}

// mustJSON renders v the way a transport would.
func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// errorsOf summarizes result errors as "[path]: message", sorted, since
// concurrent branches log in settle order.
func errorsOf(res *ExecutionResult) []string {
	if res == nil || len(res.Errors) == 0 {
		return nil
	}
	out := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		out[i] = fmt.Sprintf("%v: %s", e.Path, e.Message)
	}
	sort.Strings(out)
	return out
}
