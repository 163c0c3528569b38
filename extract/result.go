package extract

import "github.com/yourusername/pulsar"

// Result wraps an extractor's result so a handler can inspect a
// ready-to-send error Response instead of an error value, for
// extraction failures the handler wants to pass straight through
// rather than have rejected by whatever wraps it.
type Result[T any] struct {
	Value T
	Resp  *pulsar.Response
}

// Ok reports whether extraction succeeded.
func (r Result[T]) Ok() bool { return r.Resp == nil }

// Res runs fn against req and converts a failure into a ready Response
// via pulsar.ErrorResponse instead of propagating the error.
func Res[T any](fn Extractor[T], req *pulsar.Request) Result[T] {
	v, err := fn(req)
	if err != nil {
		return Result[T]{Resp: pulsar.ErrorResponse(err)}
	}
	return Result[T]{Value: v}
}
