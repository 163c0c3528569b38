package middleware

import (
	"log"
	"runtime/debug"

	"github.com/yourusername/pulsar"
)

// ExceptionHandlerFunc post-processes whatever the rest of the chain
// produced — a response, or the error that replaced it — into the
// response actually written to the wire, mirroring silent's
// middlewares::ExceptionHandler, whose handler closure takes
// Result<Response> and returns a possibly different Result<Response>.
type ExceptionHandlerFunc func(resp *pulsar.Response, err error, req *pulsar.Request) (*pulsar.Response, error)

// ExceptionHandler runs fn over the result of the rest of the chain,
// the direct Go equivalent of
// silent/src/middleware/middlewares/exception_handler.rs's
// ExceptionHandler::handle: `self.handler.clone()(next.call(req).await, configs)`.
func ExceptionHandler(fn ExceptionHandlerFunc) pulsar.Middleware {
	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		resp, err := next.Call(req)
		return fn(resp, err, req)
	})
}

// Recovery catches a panic anywhere in the rest of the chain and turns
// it into a 500 response instead of taking the connection's goroutine
// down with it, grounded on bolt/middleware/recovery.go's Recovery:
// Go's panic/recover has no equivalent in silent's Rust handler chain,
// so this one piece of the ambient stack follows the teacher rather
// than the original implementation.
func Recovery() pulsar.Middleware {
	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (resp *pulsar.Response, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("middleware: recovered panic: %v\n%s", r, debug.Stack())
				resp, err = nil, pulsar.ErrInternal.WithMessage("handler panicked")
			}
		}()
		return next.Call(req)
	})
}
