package extract

import (
	"fmt"
	"net/url"

	"github.com/yourusername/pulsar"
)

// Method extracts the request method. It never fails; the error return
// exists only so Method conforms to Extractor and composes with the
// tuple and Opt/Res helpers.
func Method(req *pulsar.Request) (string, error) { return req.Method, nil }

// Uri extracts the request URI.
func Uri(req *pulsar.Request) (*url.URL, error) { return req.URI, nil }

// Version extracts the request's protocol version string.
func Version(req *pulsar.Request) (string, error) { return req.Version, nil }

// RemoteAddr extracts the derived real peer address (see
// Request.SetRealPeerAddr for the X-Real-IP / X-Forwarded-For
// precedence this reads back).
func RemoteAddr(req *pulsar.Request) (pulsar.PeerAddr, error) {
	return req.RealPeerAddr()
}

// Extension extracts a value middleware previously stored in the
// request's extension map under type T. A missing extension is a
// server-side wiring error, not a client mistake, so it maps to 500.
func Extension[T any](req *pulsar.Request) (T, error) {
	v, ok := pulsar.Get[T](req.Extensions())
	if !ok {
		return v, pulsar.ErrConfigMissing.WithCause(fmt.Errorf("extension %T not set", v))
	}
	return v, nil
}

// Configs extracts a value the routing tree injected from a matched
// route node's WithConfig calls. A missing config is a route wiring
// error, so it maps to 500.
func Configs[T any](req *pulsar.Request) (T, error) {
	v, ok := pulsar.GetConfig[T](req.Configs())
	if !ok {
		return v, pulsar.ErrConfigMissing.WithCause(fmt.Errorf("config %T not set", v))
	}
	return v, nil
}
