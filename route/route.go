package route

import (
	"strings"

	"github.com/yourusername/pulsar"
)

// Route is the declarative, builder-style route node. Its path may
// contain embedded slashes ("user/<id:i64>/posts"); Compile splits
// those into a chain of single-segment nodes terminated by the node
// that actually carries the endpoints, middleware and configs set on
// this Route.
type Route struct {
	path        string
	handlers    map[string]pulsar.Handler
	middlewares []pulsar.Middleware
	configs     *pulsar.Configs
	children    []*Route
}

// New creates a declarative route node for path. An empty path is
// valid and denotes a structural grouping node (the root, or a nested
// group that only exists to hold children and shared middleware).
func New(path string) *Route {
	return &Route{path: path, handlers: make(map[string]pulsar.Handler)}
}

// Root creates the top-level route node, equivalent to New("").
func Root() *Route { return New("") }

// Handle registers h as the endpoint for method on this node.
func (r *Route) Handle(method string, h pulsar.Handler) *Route {
	r.handlers[strings.ToUpper(method)] = h
	return r
}

// HandleFunc is the HandlerFunc convenience form of Handle.
func (r *Route) HandleFunc(method string, h pulsar.HandlerFunc) *Route {
	return r.Handle(method, h)
}

func (r *Route) Get(h pulsar.Handler) *Route     { return r.Handle("GET", h) }
func (r *Route) Post(h pulsar.Handler) *Route    { return r.Handle("POST", h) }
func (r *Route) Put(h pulsar.Handler) *Route     { return r.Handle("PUT", h) }
func (r *Route) Patch(h pulsar.Handler) *Route   { return r.Handle("PATCH", h) }
func (r *Route) Delete(h pulsar.Handler) *Route  { return r.Handle("DELETE", h) }
func (r *Route) Head(h pulsar.Handler) *Route    { return r.Handle("HEAD", h) }
func (r *Route) Options(h pulsar.Handler) *Route { return r.Handle("OPTIONS", h) }
func (r *Route) Trace(h pulsar.Handler) *Route   { return r.Handle("TRACE", h) }

// Hook appends a middleware bound to this node; it applies to this
// node's own endpoint and to every descendant reached by the matcher.
func (r *Route) Hook(m pulsar.Middleware) *Route {
	r.middlewares = append(r.middlewares, m)
	return r
}

// WithConfig attaches a typed configuration value, merged into every
// matched request's Configs map when the match passes through this
// node.
func WithConfig[T any](r *Route, v T) *Route {
	if r.configs == nil {
		r.configs = pulsar.NewConfigs()
	}
	pulsar.SetConfig(r.configs, v)
	return r
}

// Append attaches children under this node, in order. Sibling order
// matters: when a catch-all and a literal child both match the same
// tail, the DFS matcher tries children in this insertion order.
func (r *Route) Append(children ...*Route) *Route {
	r.children = append(r.children, children...)
	return r
}

// Group is sugar for Append(New(prefix).Append(children...)): it
// inserts a purely structural node so a whole subtree can share one
// path prefix without repeating it on every leaf.
func (r *Route) Group(prefix string, children ...*Route) *Route {
	return r.Append(New(prefix).Append(children...))
}
