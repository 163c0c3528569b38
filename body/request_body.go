// Package body implements the request and response body variants:
// empty | single-buffer bytes | framed incoming | boxed polymorphic
// body for requests, and the richer response-side variant set.
package body

import (
	"bytes"
	"io"
)

// RequestBody is the polymorphic request body contract. A consumer
// takes ownership exactly once via Bytes/Reader; the request retains an
// Empty placeholder afterward.
type RequestBody interface {
	// Bytes drains the body fully and returns its contents. Calling it
	// twice on the same logical body returns the bytes once and an
	// empty slice thereafter, matching the take-once contract.
	Bytes() ([]byte, error)
	// Reader returns a streaming reader over the body, for callers that
	// do not want to buffer it fully (e.g. the HTTP/3 frame bridge).
	Reader() io.Reader
	// Len returns the exact length if statically known, or -1.
	Len() int64
}

// EmptyBody is the zero-value placeholder a request's body becomes once
// taken, or the value of a request that never had one.
type EmptyBody struct{}

func (EmptyBody) Bytes() ([]byte, error) { return nil, nil }
func (EmptyBody) Reader() io.Reader      { return bytes.NewReader(nil) }
func (EmptyBody) Len() int64             { return 0 }

// BytesBody is a single pre-read buffer, the common case once the
// HTTP/1+2 bridge has fully received a request.
type BytesBody struct {
	data []byte
	read bool
}

// NewBytesBody wraps an already-read buffer.
func NewBytesBody(data []byte) *BytesBody {
	return &BytesBody{data: data}
}

func (b *BytesBody) Bytes() ([]byte, error) {
	if b.read {
		return nil, nil
	}
	b.read = true
	return b.data, nil
}

func (b *BytesBody) Reader() io.Reader {
	if b.read {
		return bytes.NewReader(nil)
	}
	b.read = true
	return bytes.NewReader(b.data)
}

func (b *BytesBody) Len() int64 {
	if b.read {
		return 0
	}
	return int64(len(b.data))
}

// IncomingBody is a framed body still being driven by the protocol
// codec (HTTP/1 chunked transfer, HTTP/2 DATA frames, HTTP/3 frames).
// PollFrame returns io.EOF once the stream is exhausted.
type IncomingBody struct {
	PollFrame func() ([]byte, error)
	sizeHint  int64
	drained   bool
}

// NewIncomingBody wraps a frame-polling function. sizeHint is the exact
// size if known (e.g. Content-Length), or -1.
func NewIncomingBody(poll func() ([]byte, error), sizeHint int64) *IncomingBody {
	return &IncomingBody{PollFrame: poll, sizeHint: sizeHint}
}

func (b *IncomingBody) Bytes() ([]byte, error) {
	if b.drained {
		return nil, nil
	}
	b.drained = true
	var buf bytes.Buffer
	for {
		frame, err := b.PollFrame()
		if len(frame) > 0 {
			buf.Write(frame)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (b *IncomingBody) Reader() io.Reader {
	return &frameReader{poll: b.PollFrame}
}

func (b *IncomingBody) Len() int64 { return b.sizeHint }

type frameReader struct {
	poll    func() ([]byte, error)
	leftover []byte
	done    bool
}

func (r *frameReader) Read(p []byte) (int, error) {
	if len(r.leftover) == 0 {
		if r.done {
			return 0, io.EOF
		}
		frame, err := r.poll()
		if err == io.EOF {
			r.done = true
		} else if err != nil {
			return 0, err
		}
		r.leftover = frame
		if len(frame) == 0 && r.done {
			return 0, io.EOF
		}
	}
	n := copy(p, r.leftover)
	r.leftover = r.leftover[n:]
	return n, nil
}

// BoxedBody wraps an arbitrary io.Reader the codec did not shape into
// one of the other variants, an escape hatch for polymorphic bodies.
type BoxedBody struct {
	R        io.Reader
	sizeHint int64
}

// NewBoxedBody wraps r. sizeHint may be -1 if unknown.
func NewBoxedBody(r io.Reader, sizeHint int64) *BoxedBody {
	return &BoxedBody{R: r, sizeHint: sizeHint}
}

func (b *BoxedBody) Bytes() ([]byte, error) {
	if b.R == nil {
		return nil, nil
	}
	r := b.R
	b.R = nil
	return io.ReadAll(r)
}

func (b *BoxedBody) Reader() io.Reader {
	if b.R == nil {
		return bytes.NewReader(nil)
	}
	r := b.R
	b.R = nil
	return r
}

func (b *BoxedBody) Len() int64 { return b.sizeHint }
