package netserver

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/yourusername/pulsar"
	"github.com/yourusername/pulsar/ws"
)

// singleConnListener yields exactly one already-accepted net.Conn to an
// http.Server's own Serve loop, then reports closure. This is how
// netserver keeps ownership of accept()/rate-limiting (spec.md §4.6)
// while still handing the actual byte-level codec to
// golang.org/x/net/http2 + h2c, the way rivaas-dev-rivaas/router.go's
// Serve/ServeTLS hand a real net.Listener to *http.Server: here the
// listener just has exactly one member instead of an OS socket.
type singleConnListener struct {
	ch     chan net.Conn
	closed chan struct{}
	once   sync.Once
	addr   net.Addr
}

func newSingleConnListener(conn net.Conn) (*singleConnListener, net.Conn) {
	l := &singleConnListener{
		ch:     make(chan net.Conn, 1),
		closed: make(chan struct{}),
		addr:   conn.LocalAddr(),
	}
	wrapped := &closeNotifyConn{Conn: conn, onClose: l.Close}
	l.ch <- wrapped
	return l, wrapped
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	select {
	case c, ok := <-l.ch:
		if !ok {
			return nil, net.ErrClosed
		}
		return c, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

func (l *singleConnListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *singleConnListener) Addr() net.Addr { return l.addr }

// closeNotifyConn runs onClose once, in addition to the real Close,
// so the http.Server serving a singleConnListener notices the
// connection ending and its blocked second Accept call returns
// net.ErrClosed instead of hanging forever.
type closeNotifyConn struct {
	net.Conn
	onClose func() error
	once    sync.Once
}

func (c *closeNotifyConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { c.onClose() })
	return err
}

// http1Service serves one accepted connection's HTTP/1.1 (and, via h2c,
// cleartext HTTP/2) traffic, bridging to the routing tree and handling
// WebSocket upgrades by hijacking the connection once a handler's
// response carries a stashed ws.HijackFunc.
type http1Service struct {
	bridge *bridgeHandler
}

func newHTTP1Service(handler pulsar.Handler, handlerTimeout time.Duration, maxBodySize int64, metrics *Metrics) *http1Service {
	return &http1Service{
		bridge: &bridgeHandler{
			handler:        handler,
			handlerTimeout: handlerTimeout,
			maxBodySize:    maxBodySize,
			metrics:        metrics,
			protocolLabel:  "http1",
		},
	}
}

// serveConn blocks for the lifetime of conn, registering peer and
// ctx (carrying the shutdown/handler-timeout deadlines) onto every
// request, as SPEC_FULL.md §5 requires.
func (s *http1Service) serveConn(ctx context.Context, conn net.Conn, peer pulsar.PeerAddr) {
	listener, wrapped := newSingleConnListener(conn)
	defer listener.Close()

	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.serveOne(w, r)
	})

	srv := &http.Server{
		Handler:     h2c.NewHandler(mux, &http2.Server{}),
		BaseContext: func(net.Listener) context.Context { return ctx },
		ConnContext: func(c context.Context, _ net.Conn) context.Context {
			return contextWithPeer(c, peer)
		},
	}
	// Registers srv.TLSNextProto["h2"] so an already-TLS-handshaking
	// connection from a TLS-wrapped Listener (ALPN-negotiated outside
	// this function) still gets HTTP/2 instead of being read as
	// HTTP/1.1; h2c.NewHandler above only covers the cleartext upgrade
	// path.
	_ = http2.ConfigureServer(srv, &http2.Server{})

	// On abort, close the real socket (not just the single-conn
	// listener): this unblocks the connection's in-progress Read inside
	// net/http's own per-connection goroutine, which is what actually
	// frees it, rather than merely stopping the listener from handing
	// out a (nonexistent) second connection.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	_ = srv.Serve(listener)
	_ = wrapped
}

// serveOne handles a single HTTP/1 request-response. If the handler's
// response is a WebSocket 101 carrying a hijack callback, the
// connection is lifted out of net/http's control entirely: the status
// line and headers are flushed manually through the hijacked
// bufio.Writer (net/http does not do this for us once hijacked), and
// the hijack callback takes over the raw stream.
func (s *http1Service) serveOne(w http.ResponseWriter, r *http.Request) {
	if ws.IsUpgradeRequest(toPulsarProbe(r)) {
		s.serveUpgrade(w, r)
		return
	}
	s.bridge.ServeHTTP(w, r)
}

// toPulsarProbe builds a throwaway *pulsar.Request carrying only the
// headers/method IsUpgradeRequest inspects, avoiding a full body
// translation before it is known an upgrade is even being attempted.
func toPulsarProbe(r *http.Request) *pulsar.Request {
	req := pulsar.NewRequest(r.Method, r.URL, r.Proto, r.Header, nil)
	return req
}

func (s *http1Service) serveUpgrade(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, cancel := s.bridge.translate(r)
	if cancel != nil {
		defer cancel()
	}

	resp, err := s.bridge.dispatch(req)
	if err != nil {
		resp = pulsar.ErrorResponse(err)
	}
	if resp.Status != http.StatusSwitchingProtocols {
		s.bridge.writeResponse(w, resp)
		s.bridge.observe(resp.Status, start)
		return
	}

	hijackFn, ok := ws.Hijack(resp)
	if !ok {
		resp = pulsar.ErrorResponse(pulsar.ErrInternal.WithMessage("websocket handler did not hijack the connection"))
		s.bridge.writeResponse(w, resp)
		s.bridge.observe(resp.Status, start)
		return
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		resp = pulsar.ErrorResponse(pulsar.ErrInternal.WithMessage("connection does not support hijacking"))
		s.bridge.writeResponse(w, resp)
		s.bridge.observe(resp.Status, start)
		return
	}
	conn, bufrw, err := hj.Hijack()
	if err != nil {
		return
	}

	bufrw.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	resp.Header.Write(bufrw)
	bufrw.WriteString("\r\n")
	bufrw.Flush()

	s.bridge.observe(resp.Status, start)
	hijackFn(conn)
}
