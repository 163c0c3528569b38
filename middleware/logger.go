package middleware

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/yourusername/pulsar"
)

// LogEntry mirrors the JSON shape RequestTimeLogger emits (peer,
// method, URL, protocol version, status, byte count, duration),
// flattened the way bolt/middleware/logger.go's LogEntry is, but
// produced by slog.Logger.Info/Error rather than hand-assembled.
type LogEntry struct {
	Time       string  `json:"time"`
	Peer       string  `json:"peer"`
	Method     string  `json:"method"`
	Path       string  `json:"path"`
	Version    string  `json:"version"`
	Status     int     `json:"status"`
	Bytes      int64   `json:"bytes"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// RequestTimeLogger logs one structured entry per request to out via
// log/slog's JSON handler, timing from entry to the point the rest of
// the chain returns. Errors log at slog.LevelError, successes at
// slog.LevelInfo, the way
// silent/src/middleware/middlewares/request_time_logger.rs's
// RequestTimeLogger::handle distinguishes its tracing::info!/warn!/
// error! calls by outcome, and grounded on
// rivaas-dev-rivaas/router/router.go's own *slog.Logger request
// diagnostics (the one pack router that builds a real structured
// logging surface rather than falling back to the noop logger).
func RequestTimeLogger(out io.Writer) pulsar.Middleware {
	if out == nil {
		out = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(out, nil))

	return pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		start := time.Now()
		peer, _ := req.RealPeerAddr()

		path := ""
		if req.URI != nil {
			path = req.URI.Path
		}

		resp, err := next.Call(req)
		durationMS := float64(time.Since(start).Microseconds()) / 1000.0

		attrs := []any{
			slog.String("peer", peer.String()),
			slog.String("method", req.Method),
			slog.String("path", path),
			slog.String("version", req.Version),
			slog.Float64("duration_ms", durationMS),
		}
		if err != nil {
			attrs = append(attrs,
				slog.Int("status", pulsar.AsError(err).Status),
				slog.String("error", err.Error()),
			)
			logger.Error("request completed", attrs...)
		} else {
			status := 0
			var bytes int64
			if resp != nil {
				status = resp.Status
				bytes = resp.Body.SizeHint()
			}
			attrs = append(attrs, slog.Int("status", status), slog.Int64("bytes", bytes))
			logger.Info("request completed", attrs...)
		}
		return resp, err
	})
}

// DefaultRequestTimeLogger logs to os.Stdout, the common case
// (bolt.Logger()'s equivalent default).
func DefaultRequestTimeLogger() pulsar.Middleware {
	return RequestTimeLogger(os.Stdout)
}
