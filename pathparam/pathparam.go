// Package pathparam implements the typed path-parameter variant and the
// zero-copy shared-buffer string slices the routing tree extracts
// placeholders into.
package pathparam

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ErrNotRepresentable is returned by the As* accessors when the stored
// variant cannot produce the requested type (a narrowing conversion, or a
// mismatched kind such as asking a Str value for a UUID).
var ErrNotRepresentable = errors.New("pathparam: value not representable as requested type")

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInt32 Kind = iota
	KindInt64
	KindUint32
	KindUint64
	KindUUID
	KindString
	KindPath
)

// Value is the tagged path-parameter variant a matched route segment
// produces. Concrete implementations are the unexported wrapper types below;
// callers obtain one from the route tree and convert it with the As*
// helpers.
type Value interface {
	Kind() Kind
	// String renders the parameter the way it appeared (or would appear)
	// in the URL path, for logging and re-serialization.
	String() string
}

type intValue struct{ v int32 }
type i64Value struct{ v int64 }
type u32Value struct{ v uint32 }
type u64Value struct{ v uint64 }
type uuidValue struct{ v uuid.UUID }
type strValue struct{ v Str }
type pathValue struct{ v Str }

func (intValue) Kind() Kind  { return KindInt32 }
func (i64Value) Kind() Kind  { return KindInt64 }
func (u32Value) Kind() Kind  { return KindUint32 }
func (u64Value) Kind() Kind  { return KindUint64 }
func (uuidValue) Kind() Kind { return KindUUID }
func (strValue) Kind() Kind  { return KindString }
func (pathValue) Kind() Kind { return KindPath }

func (v intValue) String() string  { return strconv.FormatInt(int64(v.v), 10) }
func (v i64Value) String() string  { return strconv.FormatInt(v.v, 10) }
func (v u32Value) String() string  { return strconv.FormatUint(uint64(v.v), 10) }
func (v u64Value) String() string  { return strconv.FormatUint(v.v, 10) }
func (v uuidValue) String() string { return v.v.String() }
func (v strValue) String() string  { return v.v.String() }
func (v pathValue) String() string { return v.v.String() }

// Constructors used by the route tree while matching a segment.

func Int32(v int32) Value   { return intValue{v} }
func Int64(v int64) Value   { return i64Value{v} }
func Uint32(v uint32) Value { return u32Value{v} }
func Uint64(v uint64) Value { return u64Value{v} }
func UUID(v uuid.UUID) Value { return uuidValue{v} }
func String(v Str) Value    { return strValue{v} }
func Path(v Str) Value      { return pathValue{v} }

// ParseInt32 parses a segment as an exact, base-10 signed 32-bit integer.
func ParseInt32(segment string) (Value, error) {
	n, err := strconv.ParseInt(segment, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("pathparam: %q is not a valid int32: %w", segment, err)
	}
	return Int32(int32(n)), nil
}

// ParseInt64 parses a segment as an exact, base-10 signed 64-bit integer.
func ParseInt64(segment string) (Value, error) {
	n, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("pathparam: %q is not a valid int64: %w", segment, err)
	}
	return Int64(n), nil
}

// ParseUint32 parses a segment as an exact, base-10 unsigned 32-bit integer.
func ParseUint32(segment string) (Value, error) {
	n, err := strconv.ParseUint(segment, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("pathparam: %q is not a valid uint32: %w", segment, err)
	}
	return Uint32(uint32(n)), nil
}

// ParseUint64 parses a segment as an exact, base-10 unsigned 64-bit integer.
func ParseUint64(segment string) (Value, error) {
	n, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("pathparam: %q is not a valid uint64: %w", segment, err)
	}
	return Uint64(n), nil
}

// ParseUUID parses the canonical 36-character hyphenated UUID form,
// case-insensitively.
func ParseUUID(segment string) (Value, error) {
	id, err := uuid.Parse(segment)
	if err != nil {
		return nil, fmt.Errorf("pathparam: %q is not a valid uuid: %w", segment, err)
	}
	return UUID(id), nil
}

// AsInt64 widens Int32/Uint32/Int64 into an int64. Uint64 values that do
// not fit are rejected rather than silently truncated; narrowing from a
// String or Path variant is always rejected.
func AsInt64(v Value) (int64, error) {
	switch t := v.(type) {
	case i64Value:
		return t.v, nil
	case intValue:
		return int64(t.v), nil
	case u32Value:
		return int64(t.v), nil
	case u64Value:
		if t.v > 1<<63-1 {
			return 0, ErrNotRepresentable
		}
		return int64(t.v), nil
	default:
		return 0, ErrNotRepresentable
	}
}

// AsInt32 succeeds only for Int32, never widening down from Int64.
func AsInt32(v Value) (int32, error) {
	if t, ok := v.(intValue); ok {
		return t.v, nil
	}
	return 0, ErrNotRepresentable
}

// AsUint64 widens Uint32/Uint64 into a uint64.
func AsUint64(v Value) (uint64, error) {
	switch t := v.(type) {
	case u64Value:
		return t.v, nil
	case u32Value:
		return uint64(t.v), nil
	default:
		return 0, ErrNotRepresentable
	}
}

// AsUint32 succeeds only for Uint32.
func AsUint32(v Value) (uint32, error) {
	if t, ok := v.(u32Value); ok {
		return t.v, nil
	}
	return 0, ErrNotRepresentable
}

// AsUUID succeeds only for the UUID variant.
func AsUUID(v Value) (uuid.UUID, error) {
	if t, ok := v.(uuidValue); ok {
		return t.v, nil
	}
	return uuid.UUID{}, ErrNotRepresentable
}

// AsString succeeds for both String and Path variants (a path capture is
// always a valid string).
func AsString(v Value) (string, error) {
	switch t := v.(type) {
	case strValue:
		return t.v.String(), nil
	case pathValue:
		return t.v.String(), nil
	default:
		return "", ErrNotRepresentable
	}
}
