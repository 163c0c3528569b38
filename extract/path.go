package extract

import (
	"fmt"
	"reflect"

	"github.com/yourusername/pulsar"
	"github.com/yourusername/pulsar/pathparam"
)

// assignPathValue converts v into fv, dispatching on fv's kind through
// the pathparam.As* widening rules: ints and uints always widen up to
// the matching signed/unsigned pathparam accessor then narrow back
// down into the field's exact width, which fails if the stored value
// does not fit.
func assignPathValue(fv reflect.Value, v pathparam.Value) error {
	switch fv.Kind() {
	case reflect.String:
		s, err := pathparam.AsString(v)
		if err != nil {
			return err
		}
		fv.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := pathparam.AsInt64(v)
		if err != nil {
			return err
		}
		if fv.OverflowInt(n) {
			return pathparam.ErrNotRepresentable
		}
		fv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := pathparam.AsUint64(v)
		if err != nil {
			return err
		}
		if fv.OverflowUint(n) {
			return pathparam.ErrNotRepresentable
		}
		fv.SetUint(n)
		return nil
	case reflect.Array:
		if fv.Type() == uuidType {
			id, err := pathparam.AsUUID(v)
			if err != nil {
				return err
			}
			fv.Set(reflect.ValueOf(id))
			return nil
		}
		return fmt.Errorf("extract: unsupported path field type %s", fv.Type())
	default:
		return fmt.Errorf("extract: unsupported path field type %s", fv.Type())
	}
}

// convertPathValue builds a T from a single pathparam.Value, used by
// both the scalar instantiation of Path and by PathValue.
func convertPathValue[T any](v pathparam.Value) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if err := assignPathValue(rv, v); err != nil {
		return out, pulsar.ErrBadRequest.WithCause(err)
	}
	return out, nil
}

// isPathStruct reports whether T should be bound field-by-field rather
// than treated as a single scalar value. uuid.UUID is a [16]byte
// array, so its reflect.Kind is Array and it is treated as a scalar.
func isPathStruct(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct
}

// bindPathStruct populates one field per exported struct field from
// req's path parameters, using a `path:"name"` tag or the lowercased
// field name to look each one up.
func bindPathStruct[T any](req *pulsar.Request) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := stringTag(field, "path")
		v, ok := req.PathParam(name)
		if !ok {
			return out, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing path parameter %q", name))
		}
		if err := assignPathValue(rv.Field(i), v); err != nil {
			return out, pulsar.ErrBadRequest.WithCause(err)
		}
	}
	return out, nil
}

// Path extracts path parameters into T. When T is a struct, each
// exported field is bound from the path parameter named by its
// `path` tag (or its lowercased field name); otherwise T is treated
// as a scalar and bound from the single path parameter the matched
// route captured, which fails if the route captured zero or more than
// one.
func Path[T any](req *pulsar.Request) (T, error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if isPathStruct(rt) && rt != uuidType {
		return bindPathStruct[T](req)
	}

	params := req.PathParams()
	if len(params) != 1 {
		return zero, pulsar.ErrBadRequest.WithCause(
			fmt.Errorf("expected exactly one path parameter, found %d", len(params)))
	}
	var only pathparam.Value
	for _, v := range params {
		only = v
	}
	return convertPathValue[T](only)
}

// PathValue extracts the single named path parameter as T.
func PathValue[T any](req *pulsar.Request, name string) (T, error) {
	var zero T
	v, ok := req.PathParam(name)
	if !ok {
		return zero, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing path parameter %q", name))
	}
	return convertPathValue[T](v)
}
