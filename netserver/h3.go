package netserver

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"github.com/yourusername/pulsar"
)

// WebTransportLimits bounds a WebTransport session the way spec.md §6's
// "connection limits" paragraph calls for: maximum sessions, maximum
// concurrent streams per session, and maximum datagram size. Only
// MaxSessions is enforced, by the adapter's own session counter;
// MaxStreamsPerSession and MaxDatagramSize are not passed to quic-go
// and currently have no effect.
type WebTransportLimits struct {
	MaxSessions          int
	MaxStreamsPerSession int64
	MaxDatagramSize      uint64
}

// WebTransportSessionHandler is invoked once per accepted WebTransport
// session, in its own goroutine, with the real *webtransport.Session —
// this package does not wrap it further, per SPEC_FULL.md §4.8's
// explicit grounding in the real library rather than a hand-rolled
// session type: recv_data/send_data/finish in spec.md's wording are
// Session.AcceptStream/Stream.Read, Stream.Write, and Stream.Close.
type WebTransportSessionHandler func(ctx context.Context, session *webtransport.Session)

// HTTP3Config configures the QUIC/HTTP/3/WebTransport adapter. It is
// independent of Config (server.go) because QUIC listens on UDP and has
// no raw net.Conn to feed through ListenerSet's accept loop; a caller
// that wants both protocols runs a Server and an HTTP3Server side by
// side against the same Config.Handler.
type HTTP3Config struct {
	Handler pulsar.Handler
	Addr    string

	TLSConfig *tls.Config

	HandlerTimeout time.Duration
	MaxBodySize    int64
	ReadTimeout    time.Duration

	WebTransport          WebTransportLimits
	OnWebTransportSession WebTransportSessionHandler

	Registry prometheus.Registerer
}

// HTTP3Server serves HTTP/3 requests and, for extended-CONNECT
// WebTransport requests, upgrades to a WebTransport session. Grounded
// structurally on shockwave/pkg/shockwave/http3 (connection.go's
// per-stream dispatch loop, frames.go's frame draining) but built on
// quic-go/quic-go, quic-go/http3, and quic-go/webtransport-go rather
// than shockwave's hand-rolled quic/ subpackage, since §1's non-goal
// excludes implementing HTTP or QUIC from scratch.
type HTTP3Server struct {
	cfg     HTTP3Config
	wt      *webtransport.Server
	bridge  *bridgeHandler
	metrics *Metrics

	activeSessions chan struct{}
}

// NewHTTP3Server builds the quic-go/http3-backed server. Call
// ListenAndServe to start it.
func NewHTTP3Server(cfg HTTP3Config) *HTTP3Server {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := NewMetrics(registry)

	s := &HTTP3Server{
		cfg: cfg,
		bridge: &bridgeHandler{
			handler:        cfg.Handler,
			handlerTimeout: cfg.HandlerTimeout,
			maxBodySize:    cfg.MaxBodySize,
			metrics:        metrics,
			protocolLabel:  "http3",
		},
		metrics: metrics,
	}
	if cfg.WebTransport.MaxSessions > 0 {
		s.activeSessions = make(chan struct{}, cfg.WebTransport.MaxSessions)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHTTP3)

	quicCfg := &quic.Config{
		EnableDatagrams: true,
	}
	if cfg.ReadTimeout > 0 {
		quicCfg.MaxIdleTimeout = cfg.ReadTimeout
	}

	s.wt = &webtransport.Server{
		H3: http3.Server{
			Addr:       cfg.Addr,
			TLSConfig:  cfg.TLSConfig,
			QUICConfig: quicCfg,
			Handler:    mux,
		},
	}
	return s
}

// ListenAndServe binds the UDP socket and serves until an error or
// Shutdown/Close. It blocks, the way (*http3.Server).ListenAndServe
// does, so callers run it in its own goroutine alongside a Server.
func (s *HTTP3Server) ListenAndServe() error {
	return s.wt.ListenAndServe()
}

// Close tears down the QUIC endpoint immediately. quic-go's http3.Server
// offers no drain-in-place primitive comparable to http.Server.Shutdown,
// so in-flight streams are reset rather than allowed to finish; callers
// that need a grace period should stop routing new traffic to this
// server's address before calling Close.
func (s *HTTP3Server) Close() error {
	return s.wt.Close()
}

// serveHTTP3 demultiplexes per spec.md §4.8: an extended-CONNECT
// WebTransport request is handed to webtransport-go's own Upgrade,
// which validates the draft :protocol pseudo-header itself; everything
// else goes through the same bridgeHandler the HTTP/1+2 service uses.
func (s *HTTP3Server) serveHTTP3(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		s.serveWebTransport(w, r)
		return
	}
	s.bridge.ServeHTTP(w, r)
}

func (s *HTTP3Server) serveWebTransport(w http.ResponseWriter, r *http.Request) {
	if s.activeSessions != nil {
		select {
		case s.activeSessions <- struct{}{}:
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}

	session, err := s.wt.Upgrade(w, r)
	if err != nil {
		log.Printf("netserver: webtransport upgrade failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		if s.activeSessions != nil {
			<-s.activeSessions
		}
		return
	}

	go func() {
		defer func() {
			if s.activeSessions != nil {
				<-s.activeSessions
			}
		}()
		if s.cfg.OnWebTransportSession != nil {
			s.cfg.OnWebTransportSession(session.Context(), session)
		}
	}()
}
