// Package middleware implements the auxiliary hooks a deployment wires
// around the routing tree: CORS, cookie parsing, session injection, an
// exception handler, a request-time logger, and scheduler injection.
// CORS/cookie/session policy bodies are external collaborators — this
// package wires the integration point (headers, extensions, the Next
// chain) and leaves the decision itself to a caller-supplied policy,
// the way bolt/middleware keeps a Config struct next to each
// middleware's wiring.
package middleware

import (
	"strconv"

	"github.com/yourusername/pulsar"
)

// CORSDecision is what a CORSPolicy computes for a single request: the
// header values CORS glues onto the response if the origin is allowed.
type CORSDecision struct {
	AllowOrigin      string
	AllowMethods     string
	AllowHeaders     string
	ExposeHeaders    string
	AllowCredentials bool
	MaxAge           int
}

// CORSPolicy decides whether a request's origin is allowed and, if so,
// what headers to emit. Origin allowlists, wildcard handling, and
// credential rules are the policy's concern, not this package's —
// matching spec.md's exclusion of CORS middleware bodies from the
// core's scope. bolt/middleware/cors.go's CORSConfig shows the shape
// such a policy typically takes (AllowOrigins, AllowMethods, ...); a
// caller adapts it into a CORSPolicy implementation.
type CORSPolicy interface {
	Decide(req *pulsar.Request) (CORSDecision, bool)
}

// CORS wires a CORSPolicy into the middleware chain: it asks the
// policy for a decision, applies the resulting headers, and answers
// preflight OPTIONS requests with 204 without reaching the endpoint,
// the way bolt/middleware/cors.go's CORSWithConfig does — only the
// origin-matching and header-default logic live in policy, not here.
func CORS(policy CORSPolicy) pulsar.Middleware {
	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		decision, allowed := policy.Decide(req)

		if req.Method == "OPTIONS" {
			resp := pulsar.Empty().WithStatus(204)
			if allowed {
				writeCORSHeaders(resp, decision, true)
			}
			return resp, nil
		}

		resp, err := next.Call(req)
		if allowed && resp != nil {
			writeCORSHeaders(resp, decision, false)
		}
		return resp, err
	})
}

func writeCORSHeaders(resp *pulsar.Response, d CORSDecision, preflight bool) {
	if d.AllowOrigin == "" {
		return
	}
	resp.Header.Set("Access-Control-Allow-Origin", d.AllowOrigin)
	if d.AllowCredentials {
		resp.Header.Set("Access-Control-Allow-Credentials", "true")
	}
	if d.ExposeHeaders != "" {
		resp.Header.Set("Access-Control-Expose-Headers", d.ExposeHeaders)
	}
	if preflight {
		if d.AllowMethods != "" {
			resp.Header.Set("Access-Control-Allow-Methods", d.AllowMethods)
		}
		if d.AllowHeaders != "" {
			resp.Header.Set("Access-Control-Allow-Headers", d.AllowHeaders)
		}
		if d.MaxAge != 0 {
			resp.Header.Set("Access-Control-Max-Age", strconv.Itoa(d.MaxAge))
		}
	}
}
