// Package extract implements typed extraction of request data: path and
// query parameters, JSON and form bodies, headers and cookies,
// extensions and per-route configs. Each extractor is a plain function
// from *pulsar.Request to (T, error), so handlers compose them
// directly instead of threading a framework-owned extraction trait
// through the call signature.
package extract

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/google/uuid"

	"github.com/yourusername/pulsar"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// Extractor is the shape every function in this package conforms to.
// Opt, Res and the tuple helpers take one or more Extractor values and
// combine them.
type Extractor[T any] func(req *pulsar.Request) (T, error)

// setScalarFromString converts raw into fv, dispatching on fv's kind.
// It covers the scalar kinds struct-tag binding and the single-value
// helpers need: strings, signed and unsigned integers, floats, bools,
// and the uuid.UUID array type.
func setScalarFromString(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("extract: %q is not a valid %s: %w", raw, fv.Type(), err)
		}
		fv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("extract: %q is not a valid %s: %w", raw, fv.Type(), err)
		}
		fv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("extract: %q is not a valid %s: %w", raw, fv.Type(), err)
		}
		fv.SetFloat(n)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("extract: %q is not a valid bool: %w", raw, err)
		}
		fv.SetBool(b)
		return nil
	case reflect.Array:
		if fv.Type() == uuidType {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("extract: %q is not a valid uuid: %w", raw, err)
			}
			fv.Set(reflect.ValueOf(id))
			return nil
		}
		return fmt.Errorf("extract: unsupported field type %s", fv.Type())
	default:
		return fmt.Errorf("extract: unsupported field type %s", fv.Type())
	}
}

// convertFromString builds a T from a single string value, for the
// scalar (non-struct) instantiations of Query/Form/Header/Cookie value
// helpers.
func convertFromString[T any](raw string) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if err := setScalarFromString(rv, raw); err != nil {
		return out, pulsar.ErrBadRequest.WithCause(err)
	}
	return out, nil
}

// stringTag returns the binding name for field: the value of tag, or
// the field's own name lowercased if the tag is absent or empty.
func stringTag(field reflect.StructField, tag string) string {
	if v, ok := field.Tag.Lookup(tag); ok && v != "" {
		return v
	}
	return toLowerASCII(field.Name)
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
