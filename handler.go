package pulsar

// Handler consumes a request and returns either a response or an
// error. Endpoints are handlers; middleware composition also yields a
// handler (via Next).
type Handler interface {
	Handle(req *Request) (*Response, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req *Request) (*Response, error)

func (f HandlerFunc) Handle(req *Request) (*Response, error) { return f(req) }

// Middleware pairs a gating predicate over a request with a handling
// operation that takes a request and a reference to the remaining
// chain.
type Middleware interface {
	// Match reports whether this middleware applies to req. Route-tree
	// collection filters each node's middleware list by this predicate
	// before folding the chain.
	Match(req *Request) bool
	// Handle runs the middleware, calling next.Call(req) to continue
	// the pipeline or returning directly to short-circuit it.
	Handle(req *Request, next *Next) (*Response, error)
}

// MiddlewareFunc adapts a plain function with an always-true Match into
// a Middleware, the common case for unconditional middleware.
type MiddlewareFunc func(req *Request, next *Next) (*Response, error)

func (f MiddlewareFunc) Match(*Request) bool { return true }
func (f MiddlewareFunc) Handle(req *Request, next *Next) (*Response, error) {
	return f(req, next)
}

// Gated wraps a Middleware with a custom Match predicate, useful for
// reusing an unconditional middleware under a condition without
// redefining its Handle.
func Gated(match func(*Request) bool, m Middleware) Middleware {
	return gatedMiddleware{match: match, inner: m}
}

type gatedMiddleware struct {
	match func(*Request) bool
	inner Middleware
}

func (g gatedMiddleware) Match(req *Request) bool            { return g.match(req) }
func (g gatedMiddleware) Handle(req *Request, next *Next) (*Response, error) {
	return g.inner.Handle(req, next)
}

// HandlerOf adapts a Handler into the single-value extractor-based
// handler surface: a function taking a Request and returning a
// Response, used as the terminal node of a Next chain.
func HandlerOf(h Handler) HandlerFunc {
	return h.Handle
}
