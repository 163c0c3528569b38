package extract

import (
	"fmt"

	"github.com/yourusername/pulsar"
)

// HeaderParser is implemented by pointer-receiver header types that
// know how to parse their own raw header string and which header name
// they bind to, mirroring the Rust headers crate's typed-header
// pattern (e.g. a UserAgent type bound to "User-Agent").
type HeaderParser interface {
	HeaderName() string
	ParseHeaderValue(raw string) error
}

// TypedHeader extracts and parses a named, strongly typed header. H is
// the value type; PH must be *H implementing HeaderParser so
// TypedHeader can construct a zero H and parse into it without a
// separate constructor function.
func TypedHeader[H any, PH interface {
	*H
	HeaderParser
}](req *pulsar.Request) (H, error) {
	var h H
	ph := PH(&h)
	raw := req.Header.Get(ph.HeaderName())
	if raw == "" {
		return h, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing header %q", ph.HeaderName()))
	}
	if err := ph.ParseHeaderValue(raw); err != nil {
		return h, pulsar.ErrBadRequest.WithCause(err)
	}
	return h, nil
}

// HeaderValue extracts a single named header as T.
func HeaderValue[T any](req *pulsar.Request, name string) (T, error) {
	var zero T
	raw := req.Header.Get(name)
	if raw == "" {
		return zero, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing header %q", name))
	}
	return convertFromString[T](raw)
}

// CookieValue extracts a single named cookie as T.
func CookieValue[T any](req *pulsar.Request, name string) (T, error) {
	var zero T
	raw, ok := req.Cookie(name)
	if !ok {
		return zero, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing cookie %q", name))
	}
	return convertFromString[T](raw)
}

// UserAgent is a ready-made TypedHeader binding for "User-Agent", the
// same example the headers crate ships with.
type UserAgent struct {
	Raw string
}

func (*UserAgent) HeaderName() string { return "User-Agent" }

func (u *UserAgent) ParseHeaderValue(raw string) error {
	u.Raw = raw
	return nil
}
