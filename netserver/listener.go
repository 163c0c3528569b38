// Package netserver implements the connection acceptance and lifecycle
// manager: the listener set, the token-bucket rate limiter, the accept
// loop, graceful shutdown, and the protocol bridges (HTTP/1+2, and
// HTTP/3+WebTransport) that hand decoded requests to a pulsar.Handler.
package netserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"

	"github.com/yourusername/pulsar"
)

// Listener is the connection-acceptance abstraction shared by TCP,
// Unix-domain, and TLS-wrapped listeners.
type Listener interface {
	Accept() (net.Conn, pulsar.PeerAddr, error)
	Addr() net.Addr
	Close() error
}

// NewTCPListener binds addr and returns a plain TCP Listener.
func NewTCPListener(addr string) (Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpListener{ln: ln}, nil
}

type tcpListener struct {
	ln net.Listener
}

func (t *tcpListener) Accept() (net.Conn, pulsar.PeerAddr, error) {
	conn, err := t.ln.Accept()
	if err != nil {
		return nil, pulsar.PeerAddr{}, err
	}
	tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return conn, pulsar.PeerAddr{}, nil
	}
	return conn, pulsar.NewTCPPeer(tcpAddr, false), nil
}

func (t *tcpListener) Addr() net.Addr { return t.ln.Addr() }
func (t *tcpListener) Close() error   { return t.ln.Close() }

// NewUnixListener binds a Unix-domain socket at path.
func NewUnixListener(path string) (Listener, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &unixListener{ln: ln, path: path}, nil
}

type unixListener struct {
	ln   net.Listener
	path string
}

func (u *unixListener) Accept() (net.Conn, pulsar.PeerAddr, error) {
	conn, err := u.ln.Accept()
	if err != nil {
		return nil, pulsar.PeerAddr{}, err
	}
	return conn, pulsar.NewUnixPeer(u.path), nil
}

func (u *unixListener) Addr() net.Addr { return u.ln.Addr() }
func (u *unixListener) Close() error   { return u.ln.Close() }

// tlsPeer promotes a plain TCP/Unix peer to its TLS-wrapped kind.
func tlsPeer(p pulsar.PeerAddr) pulsar.PeerAddr {
	switch p.Kind {
	case pulsar.PeerTCP4:
		p.Kind = pulsar.PeerTLSTCP4
	case pulsar.PeerTCP6:
		p.Kind = pulsar.PeerTLSTCP6
	}
	return p
}

// NewTLSListener wraps inner with a TLS handshake, tagging every
// accepted peer address with the TLS-wrapped variant of its kind.
func NewTLSListener(inner Listener, config *tls.Config) Listener {
	return &tlsListener{inner: inner, config: config}
}

type tlsListener struct {
	inner  Listener
	config *tls.Config
}

func (t *tlsListener) Accept() (net.Conn, pulsar.PeerAddr, error) {
	conn, peer, err := t.inner.Accept()
	if err != nil {
		return nil, peer, err
	}
	return tls.Server(conn, t.config), tlsPeer(peer), nil
}

func (t *tlsListener) Addr() net.Addr { return t.inner.Addr() }
func (t *tlsListener) Close() error   { return t.inner.Close() }

// ErrListenerSetClosed is returned by ListenerSet.Accept once every
// member listener has reported closure.
var ErrListenerSetClosed = errors.New("netserver: listener set closed")

type acceptResult struct {
	conn net.Conn
	peer pulsar.PeerAddr
	err  error
}

// ListenerSet aggregates multiple Listeners and multiplexes Accept
// across them with a first-ready policy: whichever member listener has
// a connection ready is returned first. The set reports closure, via
// ErrListenerSetClosed, once every member has stopped accepting.
type ListenerSet struct {
	listeners []Listener
	results   chan acceptResult
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	active int
}

// NewListenerSet starts one accept-fan-in goroutine per listener and
// returns the aggregator. Accept is safe to call from a single caller
// loop; the set itself owns no additional per-listener goroutine
// beyond this fan-in.
func NewListenerSet(listeners ...Listener) *ListenerSet {
	ls := &ListenerSet{
		listeners: listeners,
		results:   make(chan acceptResult),
		closed:    make(chan struct{}),
		active:    len(listeners),
	}
	if len(listeners) == 0 {
		close(ls.closed)
		return ls
	}
	for _, l := range listeners {
		go ls.fanIn(l)
	}
	return ls
}

func (ls *ListenerSet) fanIn(l Listener) {
	for {
		conn, peer, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				ls.memberClosed()
				return
			}
			select {
			case ls.results <- acceptResult{err: err}:
			case <-ls.closed:
				return
			}
			continue
		}
		select {
		case ls.results <- acceptResult{conn: conn, peer: peer}:
		case <-ls.closed:
			conn.Close()
			return
		}
	}
}

func (ls *ListenerSet) memberClosed() {
	ls.mu.Lock()
	ls.active--
	allClosed := ls.active == 0
	ls.mu.Unlock()
	if allClosed {
		ls.closeOnce.Do(func() { close(ls.closed) })
	}
}

// Accept returns the next ready connection across every member
// listener, ErrListenerSetClosed once all are closed, or the ctx
// error if ctx is done first.
func (ls *ListenerSet) Accept(ctx context.Context) (net.Conn, pulsar.PeerAddr, error) {
	select {
	case r := <-ls.results:
		return r.conn, r.peer, r.err
	case <-ls.closed:
		return nil, pulsar.PeerAddr{}, ErrListenerSetClosed
	case <-ctx.Done():
		return nil, pulsar.PeerAddr{}, ctx.Err()
	}
}

// Addrs returns the bound address of every member listener, in the
// order they were registered, for the on-listen callback.
func (ls *ListenerSet) Addrs() []net.Addr {
	addrs := make([]net.Addr, 0, len(ls.listeners))
	for _, l := range ls.listeners {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// Close closes every member listener; Accept will subsequently start
// returning ErrListenerSetClosed once the fan-in goroutines observe
// the closures.
func (ls *ListenerSet) Close() error {
	var firstErr error
	for _, l := range ls.listeners {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
