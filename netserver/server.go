package netserver

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourusername/pulsar"
)

// RateLimiterConfig configures the connection-admission token bucket
// (spec.md §4.6). A nil *RateLimiterConfig on Config disables admission
// limiting entirely.
type RateLimiterConfig struct {
	Capacity     int
	RefillPeriod time.Duration
	MaxWait      time.Duration
}

// Config is the server configuration surface: binds, callbacks, rate
// limiting, graceful shutdown duration, and connection limits, mirroring
// spec.md §6's "Server configuration surface" paragraph and grounded on
// bolt/core's Config/DefaultConfig (bolt/core/types.go) for field
// naming conventions, generalized from Bolt's single-protocol Addr to
// this spec's multi-listener surface.
type Config struct {
	Handler pulsar.Handler

	TCPAddrs  []string
	UnixPaths []string
	Listeners []Listener
	TLSConfig *tls.Config

	RateLimiter *RateLimiterConfig

	ShutdownGrace  time.Duration
	HandlerTimeout time.Duration
	MaxBodySize    int64

	OnListen   func(addrs []net.Addr)
	OnShutdown func()

	Registry prometheus.Registerer
}

// Server owns the listener set, the rate limiter, and the accept loop;
// it hands each admitted connection to the HTTP/1+2 bridge. HTTP/3 runs
// as the separate HTTP3Server in h3.go, since QUIC listens on UDP and
// has no raw net.Conn to feed through this same accept loop; both share
// Config.Handler so a caller wires the same routing tree to either or
// both.
type Server struct {
	cfg         Config
	listenerSet *ListenerSet
	rateLimiter *RateLimiter
	metrics     *Metrics
	service     *http1Service

	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewServer builds the listener set from Config and returns a Server
// ready for Serve or ListenAndServe.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("netserver: Config.Handler is required")
	}

	var listeners []Listener
	for _, addr := range cfg.TCPAddrs {
		l, err := NewTCPListener(addr)
		if err != nil {
			return nil, err
		}
		if cfg.TLSConfig != nil {
			l = NewTLSListener(l, cfg.TLSConfig)
		}
		listeners = append(listeners, l)
	}
	for _, path := range cfg.UnixPaths {
		l, err := NewUnixListener(path)
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, l)
	}
	listeners = append(listeners, cfg.Listeners...)

	var rl *RateLimiter
	if cfg.RateLimiter != nil {
		rl = NewRateLimiter(cfg.RateLimiter.Capacity, cfg.RateLimiter.RefillPeriod, cfg.RateLimiter.MaxWait)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := NewMetrics(registry)

	return &Server{
		cfg:         cfg,
		listenerSet: NewListenerSet(listeners...),
		rateLimiter: rl,
		metrics:     metrics,
		service:     newHTTP1Service(cfg.Handler, cfg.HandlerTimeout, cfg.MaxBodySize, metrics),
		shutdownCh:  make(chan struct{}),
	}, nil
}

// Addrs returns the bound address of every TCP/Unix/caller-supplied
// listener, for a caller that wants it before or instead of OnListen.
func (s *Server) Addrs() []net.Addr { return s.listenerSet.Addrs() }

// Metrics returns the server's Prometheus metric set, for a caller that
// wants to mount /metrics itself rather than rely on Config.Registry's
// default registration.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Shutdown signals the accept loop to stop taking new connections. It
// does not block; Serve's return is the join point.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}

// Serve runs the biased accept loop until ctx is done or Shutdown is
// called, then waits up to Config.ShutdownGrace for in-flight
// connections to finish before returning. This is spec.md §4.6's accept
// loop: "first test the shutdown signal... else race
// listener_set.accept() against completed_task.join()" — the shutdown
// check happens first each iteration, and ListenerSet.Accept already
// races against ctx internally, which here plays the role of
// completed_task.join() as the loop's other wakeup source.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.OnListen != nil {
		s.cfg.OnListen(s.listenerSet.Addrs())
	}

	acceptCtx, cancelAccept := context.WithCancel(ctx)
	defer cancelAccept()

	// workCtx is what every accepted connection's goroutine actually
	// runs under. It survives past the accept loop breaking so in-flight
	// connections keep working during the grace period, and is only
	// canceled if that grace period expires — the "abort remaining
	// tasks" half of spec.md §4.6's shutdown sequence.
	workCtx, cancelWork := context.WithCancel(ctx)
	defer cancelWork()

	go func() {
		select {
		case <-s.shutdownCh:
			cancelAccept()
		case <-ctx.Done():
		}
	}()

acceptLoop:
	for {
		select {
		case <-s.shutdownCh:
			break acceptLoop
		case <-ctx.Done():
			break acceptLoop
		default:
		}

		conn, peer, err := s.listenerSet.Accept(acceptCtx)
		if err != nil {
			if errors.Is(err, ErrListenerSetClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break acceptLoop
			}
			log.Printf("netserver: accept error: %v", err)
			continue
		}

		s.metrics.ConnectionsAccepted.Inc()
		s.wg.Add(1)
		go s.handleConnection(workCtx, conn, peer)
	}

	if s.cfg.OnShutdown != nil {
		s.cfg.OnShutdown()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	grace := s.cfg.ShutdownGrace
	if grace <= 0 {
		grace = 30 * time.Second
	}
	select {
	case <-done:
	case <-time.After(grace):
		log.Printf("netserver: shutdown grace period elapsed, aborting remaining connections")
		cancelWork()
		<-done
	}

	if err := s.listenerSet.Close(); err != nil {
		return err
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn, peer pulsar.PeerAddr) {
	defer s.wg.Done()
	s.metrics.ConnectionsActive.Inc()
	defer s.metrics.ConnectionsActive.Dec()

	if s.rateLimiter != nil {
		if !s.rateLimiter.Acquire(ctx) {
			log.Printf("netserver: rate limiter dropped connection from %s", peer)
			s.metrics.ConnectionsRateLimited.Inc()
			conn.Close()
			return
		}
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.service.serveConn(connCtx, conn, peer)
}

// ListenAndServe runs Serve under process-interrupt/SIGTERM handling,
// the way bolt/core/app.go's Run wires signal.Notify plus a
// context.WithTimeout shutdown window around Shutdown.
func (s *Server) ListenAndServe() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("netserver: shutting down gracefully")
		s.Shutdown()
		return <-errCh
	}
}
