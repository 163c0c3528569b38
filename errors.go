// Package pulsar implements a multi-protocol HTTP server framework
// core: the Request/Response model, the routing tree, the middleware
// pipeline, and the error taxonomy that ties them together. Protocol
// adaptation lives in the sibling netserver package; typed extraction
// lives in extract; the WebSocket upgrade and message loop live in ws.
package pulsar

import (
	"errors"
	"fmt"
)

// Kind classifies the category an Error belongs to.
type Kind int

const (
	KindNotFound Kind = iota
	KindMethodNotAllowed
	KindBadRequest
	KindPayload
	KindConfigMissing
	KindWebSocketProtocol
	KindBusiness
	KindIO
)

// Error is the single error type handlers, middleware and the routing
// tree return. It carries the HTTP status to map to and a message used
// as the default response body; custom statuses (KindBusiness) reuse
// this one concrete type instead of needing new sentinels.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for %w-style unwrapping while
// keeping the status/message pair used for the client-visible response.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Status: e.Status, Message: e.Message, cause: cause}
}

// WithMessage overrides the client-visible message while keeping the
// sentinel's Kind and Status, for call sites that want Is-comparable
// errors with a more specific message than the shared sentinel's.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Kind: e.Kind, Status: e.Status, Message: message, cause: e.cause}
}

// NewError builds a business error with an arbitrary status used
// verbatim.
func NewError(status int, message string) *Error {
	return &Error{Kind: KindBusiness, Status: status, Message: message}
}

// Sentinel errors covering the common not-found/method/payload/config/
// websocket/internal categories. Compare with errors.Is; a handler may
// also construct *Error values directly for custom statuses.
var (
	ErrNotFound           = &Error{Kind: KindNotFound, Status: 404, Message: "not found"}
	ErrMethodNotAllowed   = &Error{Kind: KindMethodNotAllowed, Status: 405, Message: "method not allowed"}
	ErrBadRequest         = &Error{Kind: KindBadRequest, Status: 400, Message: "bad request"}
	ErrUnsupportedMedia   = &Error{Kind: KindPayload, Status: 415, Message: "unsupported media type"}
	ErrMissingContentType = &Error{Kind: KindPayload, Status: 400, Message: "missing content-type"}
	ErrEmptyBody          = &Error{Kind: KindPayload, Status: 400, Message: "empty body"}
	ErrConfigMissing      = &Error{Kind: KindConfigMissing, Status: 500, Message: "required config missing"}
	ErrWebSocketProtocol  = &Error{Kind: KindWebSocketProtocol, Status: 400, Message: "websocket protocol error"}
	ErrInternal           = &Error{Kind: KindIO, Status: 500, Message: "internal server error"}
)

// Is implements the errors.Is contract by Kind and Status together, so
// an *Error derived from a sentinel (via WithCause or WithMessage)
// still compares equal to it, while an error with the same Kind but a
// different Status does not.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Status == t.Status
}

// AsError unwraps err into a *Error, falling back to a generic internal
// error for anything a handler returned that isn't already one, so the
// outer edge can always convert a handler's error into a response.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return ErrInternal.WithCause(err)
}
