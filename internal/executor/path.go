package executor

import (
	"strconv"
	"strings"
)

// Path is the flattened form of a ResponsePath as it appears in errors:
// string keys for fields, int indices for list items.
type Path []PathElement

type PathElement any

// ResponsePath is one step of the path from the root to the value being
// completed. Steps are never mutated; siblings share their parent step.
type ResponsePath struct {
	Prev     *ResponsePath
	Key      PathElement
	Typename string
}

// Add returns a new step under p. p may be nil for root fields.
func (p *ResponsePath) Add(key PathElement, typename string) *ResponsePath {
	return &ResponsePath{Prev: p, Key: key, Typename: typename}
}

// AsPath flattens the chain from the root to p.
func (p *ResponsePath) AsPath() Path {
	n := 0
	for cur := p; cur != nil; cur = cur.Prev {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make(Path, n)
	for cur := p; cur != nil; cur = cur.Prev {
		n--
		out[n] = cur.Key
	}
	return out
}

// String renders the path as "hero.friends[0].name".
func (p *ResponsePath) String() string {
	path := p.AsPath()
	var b strings.Builder
	for i, elem := range path {
		switch v := elem.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

// printPath renders a coercion path suffix: ".key" for fields, "[i]" for items.
func printPath(path Path) string {
	var b strings.Builder
	for _, elem := range path {
		switch v := elem.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			b.WriteString("." + v)
		}
	}
	return b.String()
}
