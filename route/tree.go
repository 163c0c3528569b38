package route

import (
	"strings"

	"github.com/yourusername/pulsar"
	"github.com/yourusername/pulsar/pathparam"
)

// Tree is a single compiled node: the same topology as the declarative
// Route, flattened for execution. A path with embedded slashes
// compiles into a chain of single-segment Tree nodes; only the
// deepest one carries the original Route's endpoints, middleware and
// configs.
type Tree struct {
	segment    string
	special    bool
	ph         placeholder
	handlers   map[string]pulsar.Handler
	middlewares []pulsar.Middleware
	configs    *pulsar.Configs
	children   []*Tree
	hasHandler bool
}

func newTreeNode(segment string) *Tree {
	t := &Tree{segment: segment, handlers: map[string]pulsar.Handler{}}
	if ph, ok := parseSegment(segment); ok {
		t.special = true
		t.ph = ph
	}
	return t
}

func splitPathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return []string{""}
	}
	return strings.Split(trimmed, "/")
}

// Compile transforms a declarative Route (and its subtree) into an
// executable Tree.
func Compile(r *Route) *Tree {
	rawSegs := splitPathSegments(r.path)

	children := make([]*Tree, 0, len(r.children))
	for _, c := range r.children {
		children = append(children, Compile(c))
	}

	terminal := newTreeNode(rawSegs[len(rawSegs)-1])
	terminal.handlers = r.handlers
	terminal.middlewares = r.middlewares
	terminal.configs = r.configs
	terminal.children = children
	terminal.hasHandler = len(r.handlers) > 0

	node := terminal
	for i := len(rawSegs) - 2; i >= 0; i-- {
		parent := newTreeNode(rawSegs[i])
		parent.children = []*Tree{node}
		node = parent
	}
	return node
}

// matchCurrent tests t against segs[idx:], returning whether it
// matched and the index the caller should continue matching children
// from. A literal empty-segment node passes the remainder through
// unconsumed; a normal segment or typed placeholder consumes exactly
// one; a full-path placeholder captures everything from idx onward
// while still advancing by one so a more specific child still gets a
// chance to match the tail.
func (t *Tree) matchCurrent(req *pulsar.Request, splitter *pathparam.Splitter, segs []pathparam.Str, idx int) (bool, int) {
	if !t.special && t.segment == "" {
		if idx >= len(segs) {
			return true, idx
		}
		if len(t.children) == 0 {
			return false, idx
		}
		return true, idx
	}

	if !t.special {
		if idx < len(segs) && segs[idx].String() == t.segment {
			return true, idx + 1
		}
		return false, idx
	}

	switch t.ph.kind {
	case kindFullPath:
		remainder := splitter.Remainder(idx, segs)
		req.SetPathParam(t.ph.name, pathparam.Path(remainder))
		next := idx
		if idx < len(segs) {
			next = idx + 1
		}
		return true, next
	case kindPath:
		if idx >= len(segs) {
			return false, idx
		}
		req.SetPathParam(t.ph.name, pathparam.Path(segs[idx]))
		return true, idx + 1
	case kindString:
		if idx >= len(segs) {
			return false, idx
		}
		req.SetPathParam(t.ph.name, pathparam.String(segs[idx]))
		return true, idx + 1
	default:
		if idx >= len(segs) {
			return false, idx
		}
		value, err := parseTypedSegment(t.ph.kind, segs[idx].String())
		if err != nil {
			return false, idx
		}
		req.SetPathParam(t.ph.name, value)
		return true, idx + 1
	}
}

func parseTypedSegment(kind placeholderKind, segment string) (pathparam.Value, error) {
	switch kind {
	case kindInt32:
		return pathparam.ParseInt32(segment)
	case kindInt64:
		return pathparam.ParseInt64(segment)
	case kindUint32:
		return pathparam.ParseUint32(segment)
	case kindUint64:
		return pathparam.ParseUint64(segment)
	case kindUUID:
		return pathparam.ParseUUID(segment)
	default:
		return nil, pathparam.ErrNotRepresentable
	}
}

// dfsMatch walks t and its children depth-first, pushing every node it
// passes through onto stack. It accepts the match at the deepest node
// whose children all fail once the path is fully consumed, or earlier
// at any node that still has unconsumed path left but owns an
// endpoint and none of its children matched the remainder.
func (t *Tree) dfsMatch(req *pulsar.Request, splitter *pathparam.Splitter, segs []pathparam.Str, idx int, stack *[]*Tree) bool {
	matched, next := t.matchCurrent(req, splitter, segs, idx)
	if !matched {
		return false
	}

	*stack = append(*stack, t)

	if next >= len(segs) {
		for _, child := range t.children {
			if child.dfsMatch(req, splitter, segs, next, stack) {
				return true
			}
		}
		return true
	}

	for _, child := range t.children {
		if child.dfsMatch(req, splitter, segs, next, stack) {
			return true
		}
	}

	if t.hasHandler {
		return true
	}
	*stack = (*stack)[:len(*stack)-1]
	return false
}

// Match runs the DFS matcher against req's URI path and, on a
// complete match, selects the endpoint for req's method, merges
// route-node configs into req, collects and gates middleware along
// the matched path in root-to-endpoint order, and returns the
// resulting Next ready to call. It returns pulsar.ErrNotFound if no
// node matched or the matched node has no endpoints at all, and
// pulsar.ErrMethodNotAllowed if the node has endpoints but none for
// req.Method.
func Match(root *Tree, req *pulsar.Request) (*pulsar.Next, error) {
	path := ""
	if req.URI != nil {
		path = req.URI.Path
	}
	splitter := pathparam.NewSplitter(path)
	req.SetPathSource(splitter)
	segs := splitter.Segments()

	var stack []*Tree
	if !root.dfsMatch(req, splitter, segs, 0, &stack) {
		return nil, pulsar.ErrNotFound
	}

	target := stack[len(stack)-1]
	if len(target.handlers) == 0 {
		return nil, pulsar.ErrNotFound
	}
	endpoint, ok := target.handlers[req.Method]
	if !ok {
		return nil, pulsar.ErrMethodNotAllowed
	}

	var active []pulsar.Middleware
	for _, node := range stack {
		if node.configs != nil {
			req.Configs().Merge(node.configs)
		}
		for _, mw := range node.middlewares {
			if mw.Match(req) {
				active = append(active, mw)
			}
		}
	}

	return pulsar.BuildNext(endpoint, active), nil
}

// Handler adapts a compiled Tree into a pulsar.Handler, the entrypoint a
// netserver.Config.Handler wires to once routes are compiled, mirroring
// how bolt/core/app.go's App hands its router's Match result to
// Shockwave as a plain request-to-response function.
type Handler struct {
	Root *Tree
}

func (h Handler) Handle(req *pulsar.Request) (*pulsar.Response, error) {
	next, err := Match(h.Root, req)
	if err != nil {
		return nil, err
	}
	return next.Call(req)
}
