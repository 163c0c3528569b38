package extract

import "github.com/yourusername/pulsar"

// Option wraps an extractor's result so its absence or failure can be
// handled inline rather than rejecting the whole request, the Go
// counterpart to wrapping an extractor in Option<_> in the original
// extractor trait.
type Option[T any] struct {
	Value   T
	Present bool
}

// Opt runs fn against req and reports the result as an Option instead
// of propagating a failure: Path[int32] rejects a request with zero or
// two+ path parameters, but Opt(Path[int32], req) just comes back
// empty.
func Opt[T any](fn Extractor[T], req *pulsar.Request) Option[T] {
	v, err := fn(req)
	if err != nil {
		return Option[T]{}
	}
	return Option[T]{Value: v, Present: true}
}
