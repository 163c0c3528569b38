package route

import (
	"net/url"
	"testing"

	"github.com/yourusername/pulsar"
	"github.com/yourusername/pulsar/body"
	"github.com/yourusername/pulsar/pathparam"
)

func newReq(path string) *pulsar.Request {
	u, _ := url.Parse(path)
	return pulsar.NewRequest("GET", u, "HTTP/1.1", nil, body.EmptyBody{})
}

func textHandler(s string) pulsar.Handler {
	return pulsar.HandlerFunc(func(*pulsar.Request) (*pulsar.Response, error) {
		return pulsar.Text(s), nil
	})
}

func bodyText(t *testing.T, resp *pulsar.Response) string {
	t.Helper()
	raw, err := body.Collect(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestCatchAllYieldsToMoreSpecificChild(t *testing.T) {
	r := New("<path:**>").Get(textHandler("hello")).
		Append(New("world").Get(textHandler("world")))
	tree := Compile(r)

	req := newReq("/hello/world")
	next, err := Match(tree, req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := next.Call(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := bodyText(t, resp); got != "world" {
		t.Fatalf("got %q, want %q", got, "world")
	}
}

func TestCatchAllFallsBackWhenChildMisses(t *testing.T) {
	r := New("<path:**>").Get(textHandler("hello")).
		Append(New("world").Get(textHandler("world")))
	tree := Compile(r)

	req := newReq("/hello/world1")
	next, err := Match(tree, req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := next.Call(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := bodyText(t, resp); got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	v, ok := req.PathParam("path")
	if !ok {
		t.Fatal("expected path param to be set")
	}
	full, err := pathparam.AsString(v)
	if err != nil || full != "hello/world1" {
		t.Fatalf("got %q, %v", full, err)
	}
}

type countMiddleware struct{ n *int }

func (c countMiddleware) Match(*pulsar.Request) bool { return true }
func (c countMiddleware) Handle(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
	*c.n++
	return next.Call(req)
}

func TestLayeredMiddlewareCollectedRootToEndpoint(t *testing.T) {
	var c1, c2 int
	r := Root().Hook(countMiddleware{&c1}).
		Append(New("api").Hook(countMiddleware{&c2}).Get(textHandler("ok")))
	tree := Compile(r)

	req := newReq("/api")
	next, err := Match(tree, req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := next.Call(req); err != nil {
		t.Fatal(err)
	}
	if c1 != 1 || c2 != 1 {
		t.Fatalf("c1=%d c2=%d, want 1 1", c1, c2)
	}
}

func TestInt64PathParamRoundTrip(t *testing.T) {
	r := Root().Append(New("<id:i64>").Get(pulsar.HandlerFunc(func(req *pulsar.Request) (*pulsar.Response, error) {
		v, _ := req.PathParam("id")
		n, err := pathparam.AsInt64(v)
		if err != nil {
			return nil, err
		}
		return pulsar.Text(string(rune('0' + n%10))), nil
	})))
	tree := Compile(r)

	req := newReq("/12345678909876543")
	next, err := Match(tree, req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := next.Call(req); err != nil {
		t.Fatal(err)
	}
	v, _ := req.PathParam("id")
	n, err := pathparam.AsInt64(v)
	if err != nil || n != 12345678909876543 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestInt64PathParamRejectsNonNumeric(t *testing.T) {
	r := Root().Append(New("<id:i64>").Get(textHandler("ok")))
	tree := Compile(r)

	req := newReq("/not-a-number")
	_, err := Match(tree, req)
	if err != pulsar.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMethodNotAllowedWhenEndpointMissingForMethod(t *testing.T) {
	r := Root().Append(New("widgets").Get(textHandler("ok")))
	tree := Compile(r)

	req := newReq("/widgets")
	req.Method = "DELETE"
	_, err := Match(tree, req)
	if err != pulsar.ErrMethodNotAllowed {
		t.Fatalf("got %v, want ErrMethodNotAllowed", err)
	}
}

func TestEmbeddedSlashPathSplitsIntoChain(t *testing.T) {
	r := Root().Append(New("user/<id:i64>/posts").Get(textHandler("posts")))
	tree := Compile(r)

	req := newReq("/user/42/posts")
	next, err := Match(tree, req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := next.Call(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := bodyText(t, resp); got != "posts" {
		t.Fatalf("got %q", got)
	}
}

func TestTrailingSlashEquivalence(t *testing.T) {
	r := Root().Append(New("test").Get(textHandler("ok")))
	tree := Compile(r)

	for _, p := range []string{"/test", "/test/"} {
		req := newReq(p)
		if _, err := Match(tree, req); err != nil {
			t.Fatalf("path %q: %v", p, err)
		}
	}

	req := newReq("/test/extra")
	if _, err := Match(tree, req); err != pulsar.ErrNotFound {
		t.Fatalf("path /test/extra: got %v, want ErrNotFound", err)
	}
}
