package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	schema "github.com/hanpama/gqlengine/internal/schema"
)

// Typenamer is implemented by values that know their own object type name.
type Typenamer interface {
	GraphQLTypename() string
}

// DefaultFieldResolver looks the field up on source: a map key, a struct field
// (matched by `graphql` tag, `json` tag or case-insensitive name) or an
// exported method named after the field. Functions found this way are called
// with whichever of ctx, args and info their signature asks for.
func DefaultFieldResolver(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error) {
	if source == nil {
		return nil, nil
	}
	name := info.FieldName
	switch s := source.(type) {
	case map[string]any:
		return callProperty(ctx, s[name], args, info)
	case *OrderedMap:
		v, _ := s.Get(name)
		return v, nil
	}

	orig := reflect.ValueOf(source)
	rv := orig
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if !v.IsValid() {
				return nil, nil
			}
			return callProperty(ctx, v.Interface(), args, info)
		}
	case reflect.Struct:
		if idx, ok := structFieldIndex(rv.Type(), name); ok {
			return callProperty(ctx, rv.Field(idx).Interface(), args, info)
		}
	}

	if m := methodFor(orig, name); m.IsValid() {
		return callFunc(ctx, m, args, info)
	}
	return nil, nil
}

// DefaultTypeResolver resolves the object type of an abstract value from a
// "__typename" map entry, a Typenamer, or the first possible type whose
// IsTypeOf accepts the value.
func DefaultTypeResolver(ctx context.Context, value any, info *ResolveInfo, abstractType *schema.Type) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	if t, ok := value.(Typenamer); ok {
		return t.GraphQLTypename(), nil
	}
	for _, t := range info.Schema.PossibleTypes(abstractType) {
		if t.IsTypeOf != nil && t.IsTypeOf(value) {
			return t.Name, nil
		}
	}
	return "", nil
}

type fieldKey struct {
	t    reflect.Type
	name string
}

var structFieldCache sync.Map // fieldKey -> int (-1 when absent)

func structFieldIndex(t reflect.Type, name string) (int, bool) {
	key := fieldKey{t, name}
	if idx, ok := structFieldCache.Load(key); ok {
		return idx.(int), idx.(int) >= 0
	}
	idx := lookupStructField(t, name)
	structFieldCache.Store(key, idx)
	return idx, idx >= 0
}

func lookupStructField(t reflect.Type, name string) int {
	folded := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tagName(f.Tag.Get("graphql")) == name || tagName(f.Tag.Get("json")) == name {
			return i
		}
		if folded < 0 && strings.EqualFold(f.Name, name) {
			folded = i
		}
	}
	return folded
}

func tagName(tag string) string {
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag == "-" {
		return ""
	}
	return tag
}

func methodFor(v reflect.Value, name string) reflect.Value {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || size == 0 {
		return reflect.Value{}
	}
	return v.MethodByName(string(unicode.ToUpper(r)) + name[size:])
}

func callProperty(ctx context.Context, v any, args map[string]any, info *ResolveInfo) (any, error) {
	if v == nil {
		return nil, nil
	}
	if fn, ok := v.(FieldResolveFn); ok {
		return fn(ctx, nil, args, info)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		if rv.IsNil() {
			return nil, nil
		}
		return callFunc(ctx, rv, args, info)
	}
	return v, nil
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	argsType    = reflect.TypeOf(map[string]any(nil))
	infoType    = reflect.TypeOf((*ResolveInfo)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// callFunc calls fn with the parameters it declares out of ctx, args and
// info, and reads either (value), (error) or (value, error) back.
func callFunc(ctx context.Context, fn reflect.Value, args map[string]any, info *ResolveInfo) (any, error) {
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("cannot call variadic %s for field %q", ft, info.FieldName)
	}
	in := make([]reflect.Value, ft.NumIn())
	for i := range in {
		switch p := ft.In(i); {
		case p == contextType:
			in[i] = reflect.ValueOf(ctx)
		case p == argsType:
			in[i] = reflect.ValueOf(args)
		case p == infoType:
			in[i] = reflect.ValueOf(info)
		default:
			return nil, fmt.Errorf("cannot call %s for field %q: unsupported parameter %s", ft, info.FieldName, p)
		}
	}
	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if ft.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	case 2:
		err, _ := out[1].Interface().(error)
		if err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("cannot call %s for field %q: too many results", ft, info.FieldName)
	}
}
