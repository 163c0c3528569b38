package body

import (
	"bytes"
	"io"
)

// ResponseBody is the polymorphic response body contract. Every variant
// exposes a frame-polling interface (NextFrame) plus a size hint, exact
// where statically known.
type ResponseBody interface {
	// NextFrame returns the next chunk to write to the wire, or
	// io.EOF once exhausted.
	NextFrame() ([]byte, error)
	// SizeHint returns the exact byte count if known, or -1.
	SizeHint() int64
}

// NoneBody carries no payload at all (e.g. 204 No Content).
type NoneBody struct{}

func (NoneBody) NextFrame() ([]byte, error) { return nil, io.EOF }
func (NoneBody) SizeHint() int64            { return 0 }

// BytesResponseBody is a single pre-rendered buffer, the common case
// for JSON/text/html responses.
type BytesResponseBody struct {
	data []byte
	sent bool
}

func NewBytesResponseBody(data []byte) *BytesResponseBody {
	return &BytesResponseBody{data: data}
}

func (b *BytesResponseBody) NextFrame() ([]byte, error) {
	if b.sent {
		return nil, io.EOF
	}
	b.sent = true
	return b.data, nil
}

func (b *BytesResponseBody) SizeHint() int64 { return int64(len(b.data)) }

// ChunkQueueBody emits an ordered queue of pre-built chunks, used by
// handlers that assemble a response incrementally (e.g. server-sent
// events, where an external formatter produces the chunks this body
// just carries).
type ChunkQueueBody struct {
	chunks [][]byte
	idx    int
	total  int64
}

// NewChunkQueueBody takes ownership of chunks in order.
func NewChunkQueueBody(chunks [][]byte) *ChunkQueueBody {
	var total int64
	for _, c := range chunks {
		total += int64(len(c))
	}
	return &ChunkQueueBody{chunks: chunks, total: total}
}

// Push appends one more chunk to the queue. A known SizeHint grows by
// the chunk's length; an unknown (-1) one stays unknown.
func (b *ChunkQueueBody) Push(chunk []byte) {
	b.chunks = append(b.chunks, chunk)
	if b.total >= 0 {
		b.total += int64(len(chunk))
	}
}

func (b *ChunkQueueBody) NextFrame() ([]byte, error) {
	if b.idx >= len(b.chunks) {
		return nil, io.EOF
	}
	c := b.chunks[b.idx]
	b.idx++
	return c, nil
}

func (b *ChunkQueueBody) SizeHint() int64 { return b.total }

// IncomingResponseBody forwards frames received from an upstream stream
// unmodified, e.g. proxying or re-streaming another connection's body.
type IncomingResponseBody struct {
	PollFrame func() ([]byte, error)
	sizeHint  int64
}

func NewIncomingResponseBody(poll func() ([]byte, error), sizeHint int64) *IncomingResponseBody {
	return &IncomingResponseBody{PollFrame: poll, sizeHint: sizeHint}
}

func (b *IncomingResponseBody) NextFrame() ([]byte, error) { return b.PollFrame() }
func (b *IncomingResponseBody) SizeHint() int64             { return b.sizeHint }

// StreamBody lazily pulls from an io.Reader one buffer at a time,
// useful for large generated payloads a handler does not want to
// materialize fully before the first byte is written.
type StreamBody struct {
	r        io.Reader
	bufSize  int
	sizeHint int64
	eof      bool
}

// NewStreamBody wraps r, reading bufSize bytes per frame (default 32KiB
// if bufSize <= 0). sizeHint may be -1 if unknown.
func NewStreamBody(r io.Reader, bufSize int, sizeHint int64) *StreamBody {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	return &StreamBody{r: r, bufSize: bufSize, sizeHint: sizeHint}
}

func (b *StreamBody) NextFrame() ([]byte, error) {
	if b.eof {
		return nil, io.EOF
	}
	buf := make([]byte, b.bufSize)
	n, err := b.r.Read(buf)
	if err == io.EOF {
		b.eof = true
		if n == 0 {
			return nil, io.EOF
		}
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (b *StreamBody) SizeHint() int64 { return b.sizeHint }

// BoxedResponseBody wraps an arbitrary ResponseBody implementation
// supplied by an auxiliary collaborator (e.g. a static-file handler or
// an external server-sent-events formatter).
type BoxedResponseBody struct {
	Inner ResponseBody
}

func (b *BoxedResponseBody) NextFrame() ([]byte, error) { return b.Inner.NextFrame() }
func (b *BoxedResponseBody) SizeHint() int64             { return b.Inner.SizeHint() }

// Collect drains a ResponseBody into a single buffer, used by tests and
// by bridges that must know the full payload before writing headers
// (e.g. when Content-Length must precede the body on the wire).
func Collect(b ResponseBody) ([]byte, error) {
	var buf bytes.Buffer
	for {
		frame, err := b.NextFrame()
		if len(frame) > 0 {
			buf.Write(frame)
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}
