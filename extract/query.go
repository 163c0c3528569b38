package extract

import (
	"fmt"
	"reflect"

	"github.com/yourusername/pulsar"
)

// bindValuesStruct populates one field per exported struct field of T
// from values, using a tag (tagName) or the lowercased field name to
// look each one up. Every field must have a value present; there is no
// default-value fallback.
func bindValuesStruct[T any](get func(string) (string, bool), tagName string) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	rt := rv.Type()
	if rt.Kind() != reflect.Struct {
		return out, fmt.Errorf("extract: %s must be bound into a struct type, got %s", tagName, rt)
	}
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := stringTag(field, tagName)
		raw, ok := get(name)
		if !ok {
			return out, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing %s parameter %q", tagName, name))
		}
		if err := setScalarFromString(rv.Field(i), raw); err != nil {
			return out, pulsar.ErrBadRequest.WithCause(err)
		}
	}
	return out, nil
}

// Query binds the request's URL query string into T, a struct whose
// exported fields carry a `query:"name"` tag (or are matched by
// lowercased field name).
func Query[T any](req *pulsar.Request) (T, error) {
	values := req.Query()
	return bindValuesStruct[T](func(name string) (string, bool) {
		vs, ok := values[name]
		if !ok || len(vs) == 0 {
			return "", false
		}
		return vs[0], true
	}, "query")
}

// QueryValue extracts a single named query parameter as T.
func QueryValue[T any](req *pulsar.Request, name string) (T, error) {
	var zero T
	values := req.Query()
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return zero, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing query parameter %q", name))
	}
	return convertFromString[T](vs[0])
}
