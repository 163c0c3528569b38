package extract

import (
	"fmt"

	"github.com/yourusername/pulsar"
)

// Form binds the request's application/x-www-form-urlencoded or
// multipart/form-data body into T, a struct whose exported fields
// carry a `form:"name"` tag (or are matched by lowercased field name).
// The body is parsed through Request.ParseForm, so it shares that
// method's take-once caching.
func Form[T any](req *pulsar.Request) (T, error) {
	var zero T
	values, err := req.ParseForm()
	if err != nil {
		return zero, err
	}
	return bindValuesStruct[T](func(name string) (string, bool) {
		vs, ok := values[name]
		if !ok || len(vs) == 0 {
			return "", false
		}
		return vs[0], true
	}, "form")
}

// FormValue extracts a single named form field as T.
func FormValue[T any](req *pulsar.Request, name string) (T, error) {
	var zero T
	values, err := req.ParseForm()
	if err != nil {
		return zero, err
	}
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return zero, pulsar.ErrBadRequest.WithCause(fmt.Errorf("missing form field %q", name))
	}
	return convertFromString[T](vs[0])
}
