package ws

import (
	"net"
	"net/http"
	"strings"

	"github.com/yourusername/pulsar"
)

// headerContains reports whether any comma-separated token of any
// value of key, case-insensitively trimmed, equals value.
func headerContains(h http.Header, key, value string) bool {
	for _, raw := range h.Values(key) {
		for _, tok := range strings.Split(raw, ",") {
			if strings.EqualFold(strings.TrimSpace(tok), value) {
				return true
			}
		}
	}
	return false
}

// IsUpgradeRequest reports whether req carries the Upgrade/Connection
// pair a WebSocket handshake requires, independent of the rest of the
// handshake's validity.
func IsUpgradeRequest(req *pulsar.Request) bool {
	return headerContains(req.Header, "Upgrade", "websocket") &&
		headerContains(req.Header, "Connection", "upgrade")
}

// CheckUpgrade validates the handshake headers per RFC 6455 section
// 4.2.1 and returns the client's Sec-WebSocket-Key. A failure maps to
// 400 via ErrWebSocketProtocol, per the pre-upgrade protocol-error
// contract.
func CheckUpgrade(req *pulsar.Request) (key string, err error) {
	if req.Method != http.MethodGet {
		return "", pulsar.ErrWebSocketProtocol.WithMessage("upgrade requires GET")
	}
	if !IsUpgradeRequest(req) {
		return "", pulsar.ErrWebSocketProtocol.WithMessage("missing Upgrade: websocket")
	}
	if req.Header.Get("Sec-WebSocket-Version") != "13" {
		return "", pulsar.ErrWebSocketProtocol.WithMessage("unsupported Sec-WebSocket-Version")
	}
	key = req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return "", pulsar.ErrWebSocketProtocol.WithMessage("missing Sec-WebSocket-Key")
	}
	return key, nil
}

// selectSubprotocol returns the first protocol the client offered (in
// Sec-WebSocket-Protocol, a comma-separated list in preference order)
// that also appears in supported, or "" if none match.
func selectSubprotocol(req *pulsar.Request, supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	offered := req.Header.Get("Sec-WebSocket-Protocol")
	if offered == "" {
		return ""
	}
	for _, tok := range strings.Split(offered, ",") {
		tok = strings.TrimSpace(tok)
		for _, want := range supported {
			if strings.EqualFold(tok, want) {
				return want
			}
		}
	}
	return ""
}

// CheckOrigin, when non-nil, vets the Origin header of an incoming
// upgrade request; returning false rejects the handshake. The default
// (nil) accepts any origin, matching same-origin policy being the
// browser's responsibility for non-browser clients.
type CheckOrigin func(req *pulsar.Request) bool

// Options configures the handshake response.
type Options struct {
	Subprotocols []string
	CheckOrigin  CheckOrigin
}

// Accept validates the handshake and builds the 101 response to send
// back over the still-ordinary HTTP/1 connection. The caller (the
// HTTP/1 connection service) is responsible for flushing this response
// and then handing the raw connection to NewConn; pulsar's Response
// type has no hijack primitive of its own; the handoff happens below
// the framework's body abstraction.
func Accept(req *pulsar.Request, opts Options) (resp *pulsar.Response, subprotocol string, err error) {
	key, err := CheckUpgrade(req)
	if err != nil {
		return nil, "", err
	}
	if opts.CheckOrigin != nil && !opts.CheckOrigin(req) {
		return nil, "", pulsar.ErrWebSocketProtocol.WithMessage("origin rejected")
	}

	subprotocol = selectSubprotocol(req, opts.Subprotocols)

	resp = pulsar.Empty().WithStatus(http.StatusSwitchingProtocols)
	resp.Header.Set("Upgrade", "websocket")
	resp.Header.Set("Connection", "Upgrade")
	resp.Header.Set("Sec-WebSocket-Accept", ComputeAcceptKey(key))
	if subprotocol != "" {
		resp.Header.Set("Sec-WebSocket-Protocol", subprotocol)
	}
	return resp, subprotocol, nil
}

// HijackFunc is stashed on a 101 Response's extension map so the HTTP/1
// connection service can retrieve it after flushing the handshake
// response and hand over the raw net.Conn it hijacked from the codec.
// A handler sets this to whatever it wants run as the upgraded
// connection's message loop, typically a closure that builds a Conn
// with NewConn and calls Serve with its own Handlers.
type HijackFunc func(conn net.Conn)

// SetHijack stashes fn on resp's extensions.
func SetHijack(resp *pulsar.Response, fn HijackFunc) {
	pulsar.Set(resp.Extensions(), fn)
}

// Hijack retrieves a previously stashed HijackFunc, if any.
func Hijack(resp *pulsar.Response) (HijackFunc, bool) {
	return pulsar.Get[HijackFunc](resp.Extensions())
}
