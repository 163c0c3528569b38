package middleware

import (
	"net/http"
	"strings"

	"github.com/yourusername/pulsar"
)

// Jar is the per-request set of cookies, keyed by name. Signing,
// encryption, and expiry policy are an external collaborator's concern
// (spec.md excludes cookie-parsing-policy middleware bodies from the
// core); Jar only carries raw name/value pairs, mirroring
// silent/src/cookie/cookie_ext.rs's CookieJar before any signing layer
// is applied on top.
type Jar map[string]string

// Get returns a cookie's value.
func (j Jar) Get(name string) (string, bool) {
	v, ok := j[name]
	return v, ok
}

// Set records a cookie value in the jar. Cookies writes it back as a
// Set-Cookie header only when the jar is stashed on the response's
// extensions; the request's jar is not written back. Attributes (Path, Secure, SameSite, ...) are set
// by building an *http.Cookie and calling Response.SetCookie directly;
// Jar only tracks the raw values a handler wants round-tripped through
// this middleware's bookkeeping.
func (j Jar) Set(name, value string) { j[name] = value }

func jarFromHeader(header http.Header) Jar {
	jar := Jar{}
	raw := header.Get("Cookie")
	if raw == "" {
		return jar
	}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		jar[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return jar
}

// Cookies parses the incoming Cookie header into a Jar stashed on the
// request's extensions, the way silent's CookieMiddleware inserts a
// CookieJar before calling next. A handler or later middleware reads it
// back with extract.Extension[Jar] or pulsar.Get[Jar](req.Extensions()),
// and writes fresh values into a Jar it stashes on the response's
// extensions; Cookies writes each entry of such a response Jar as a
// Set-Cookie header once the chain returns. The response Jar is not
// merged with the request's values, and nothing is written when the
// response carries no Jar.
func Cookies() pulsar.Middleware {
	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		jar := jarFromHeader(req.Header)
		pulsar.Set(req.Extensions(), jar)

		resp, err := next.Call(req)
		if resp == nil {
			return resp, err
		}

		if respJar, ok := pulsar.Get[Jar](resp.Extensions()); ok {
			for name, value := range respJar {
				resp.SetCookie(&http.Cookie{Name: name, Value: value})
			}
		}
		return resp, err
	})
}
