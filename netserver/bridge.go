package netserver

import (
	"context"
	"net/http"
	"time"

	"github.com/yourusername/pulsar"
	"github.com/yourusername/pulsar/body"
)

// peerContextKey tags the pulsar.PeerAddr a listener observed for a
// connection, stashed on the *http.Request context so bridgeHandler can
// read it back without threading it through net/http's own signature.
type peerContextKey struct{}

func contextWithPeer(ctx context.Context, peer pulsar.PeerAddr) context.Context {
	p := peer
	return context.WithValue(ctx, peerContextKey{}, &p)
}

func peerFromContext(ctx context.Context) (pulsar.PeerAddr, bool) {
	p, ok := ctx.Value(peerContextKey{}).(*pulsar.PeerAddr)
	if !ok {
		return pulsar.PeerAddr{}, false
	}
	return *p, true
}

// bridgeHandler adapts any http.Handler-shaped entrypoint to the
// routing tree. Both the HTTP/1+2 service (net/http + h2c) and the
// HTTP/3 service (quic-go/http3) present requests this way, so the
// translation lives here once rather than twice, the way
// rivaas-dev-rivaas/router.Router.ServeHTTP bridges net/http to its own
// handler surface in a single place regardless of which Serve/ServeTLS
// entrypoint is in use.
type bridgeHandler struct {
	handler        pulsar.Handler
	handlerTimeout time.Duration
	maxBodySize    int64
	metrics        *Metrics
	protocolLabel  string
}

func (b *bridgeHandler) requestBody(r *http.Request) body.RequestBody {
	if r.Body == nil || r.Body == http.NoBody {
		return body.EmptyBody{}
	}
	size := r.ContentLength
	if b.maxBodySize > 0 {
		if size < 0 || size > b.maxBodySize {
			size = b.maxBodySize
		}
		return body.NewBoxedBody(http.MaxBytesReader(nil, r.Body, b.maxBodySize), size)
	}
	return body.NewBoxedBody(r.Body, size)
}

// translate builds a pulsar.Request from an *http.Request, attaching
// the accepted-connection context (carrying the shutdown deadline and,
// if configured, a per-request timeout) and the transport peer address.
func (b *bridgeHandler) translate(r *http.Request) (*pulsar.Request, context.CancelFunc) {
	req := pulsar.NewRequest(r.Method, r.URL, r.Proto, r.Header.Clone(), b.requestBody(r))

	ctx := r.Context()
	var cancel context.CancelFunc
	if b.handlerTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, b.handlerTimeout)
	}
	req = req.WithContext(ctx)

	if peer, ok := peerFromContext(r.Context()); ok {
		req.SetRealPeerAddr(peer)
	}
	return req, cancel
}

// dispatch runs the handler with cooperative timeout cancellation: the
// handler goroutine is never forcibly killed (Go offers no such thing),
// but a timed-out caller stops waiting and receives the mapped timeout
// response immediately, matching the "abort the handler future" wording
// with the caveat, spelled out in the design notes, that cancellation is
// cooperative rather than preemptive.
func (b *bridgeHandler) dispatch(req *pulsar.Request) (*pulsar.Response, error) {
	type result struct {
		resp *pulsar.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := b.handler.Handle(req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-req.Context().Done():
		return nil, pulsar.ErrInternal.WithMessage("handler timed out").WithCause(req.Context().Err())
	}
}

func (b *bridgeHandler) writeResponse(w http.ResponseWriter, resp *pulsar.Response) {
	h := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	w.WriteHeader(resp.Status)

	flusher, _ := w.(http.Flusher)
	for {
		frame, err := resp.Body.NextFrame()
		if len(frame) > 0 {
			w.Write(frame)
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func (b *bridgeHandler) observe(status int, start time.Time) {
	if b.metrics == nil {
		return
	}
	b.metrics.RequestsTotal.WithLabelValues(b.protocolLabel, statusClass(status)).Inc()
	b.metrics.RequestDuration.WithLabelValues(b.protocolLabel).Observe(time.Since(start).Seconds())
}

// ServeHTTP is the plain, non-upgrading request path: translate,
// dispatch, write, observe. The HTTP/1 service wraps this with a
// WebSocket-upgrade check first; HTTP/3 uses it directly, since RFC 6455
// upgrades do not apply to HTTP/3 (WebTransport is the equivalent
// there, handled separately in h3.go).
func (b *bridgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, cancel := b.translate(r)
	if cancel != nil {
		defer cancel()
	}

	resp, err := b.dispatch(req)
	if err != nil {
		resp = pulsar.ErrorResponse(err)
	}
	b.writeResponse(w, resp)
	b.observe(resp.Status, start)
}
