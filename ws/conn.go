package ws

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"sync"
	"unicode/utf8"
)

// MessageType identifies the payload kind a Message carries across the
// send/receive channels; it mirrors the data and close/ping/pong
// opcodes a caller can act on.
type MessageType int

const (
	TextMessage   MessageType = MessageType(OpcodeText)
	BinaryMessage MessageType = MessageType(OpcodeBinary)
	CloseMessage  MessageType = MessageType(OpcodeClose)
	PingMessage   MessageType = MessageType(OpcodePing)
	PongMessage   MessageType = MessageType(OpcodePong)
)

// Message is one application-level WebSocket message, already
// reassembled from any fragmentation on read, or about to be framed
// on write.
type Message struct {
	Type MessageType
	Data []byte
}

// Parts is the request-derived state shared between the send task, the
// receive task, and user callbacks, guarded by a read-write lock the
// way the original request/response halves of an upgraded connection
// are shared once split into two cooperating tasks.
type Parts struct {
	mu          sync.RWMutex
	Subprotocol string
	Values      map[string]any
}

func newParts(subprotocol string) *Parts {
	return &Parts{Subprotocol: subprotocol, Values: map[string]any{}}
}

// Get reads a value stashed by a previous callback invocation.
func (p *Parts) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.Values[key]
	return v, ok
}

// Set stashes a value for later callback invocations to read.
func (p *Parts) Set(key string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Values[key] = v
}

// Sender is the cloneable handle handlers use to enqueue outbound
// messages; every clone writes to the same bounded channel the send
// task drains, so ordering across clones matches enqueue order.
type Sender struct {
	ch chan Message
}

// Clone returns a handle to the same underlying channel, the Go
// equivalent of cloning an mpsc sender: any number of callers may hold
// one and send concurrently.
func (s *Sender) Clone() *Sender { return s }

// Send enqueues msg, blocking until the send task has room or ctx is
// done.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	select {
	case s.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handlers are the user callbacks the message loop invokes. OnConnect
// runs once after upgrade with a sender clone the handler may retain.
// OnSend may rewrite or drop an outbound message before it is framed.
// OnReceive handles each inbound message. OnClose runs once after the
// stream ends, by either direction.
type Handlers struct {
	OnConnect func(parts *Parts, sender *Sender)
	OnSend    func(msg Message, parts *Parts) (Message, bool)
	OnReceive func(msg Message, parts *Parts)
	OnClose   func(parts *Parts)
}

// Conn is an upgraded WebSocket endpoint running in server or client
// role over a raw, already-hijacked connection.
type Conn struct {
	conn     net.Conn
	isServer bool

	reader *FrameReader
	writer *FrameWriter

	Parts *Parts

	maxMessageSize int64

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps conn, already past the HTTP-level upgrade handshake,
// as a WebSocket endpoint. subprotocol is the one negotiated during
// upgrade, if any.
func NewConn(conn net.Conn, isServer bool, subprotocol string) *Conn {
	return &Conn{
		conn:           conn,
		isServer:       isServer,
		reader:         NewFrameReader(conn, nil),
		writer:         NewFrameWriter(conn),
		Parts:          newParts(subprotocol),
		maxMessageSize: 32 << 20,
	}
}

// SetMaxMessageSize bounds the size of an assembled message; reads
// that would exceed it fail with ErrMessageTooLarge.
func (c *Conn) SetMaxMessageSize(n int64) { c.maxMessageSize = n }

func randomMaskKey() [4]byte {
	var key [4]byte
	_, _ = rand.Read(key[:])
	return key
}

// Serve runs the send and receive tasks until either one terminates
// (peer close, protocol error, read/write error, or ctx cancellation),
// then runs h.OnClose and returns the terminating error, or nil for a
// clean close. h.OnConnect, if set, runs synchronously before either
// task starts.
func (c *Conn) Serve(ctx context.Context, sendBuf int, h Handlers) error {
	if sendBuf <= 0 {
		sendBuf = 16
	}
	sendCh := make(chan Message, sendBuf)
	sender := &Sender{ch: sendCh}

	if h.OnConnect != nil {
		h.OnConnect(c.Parts, sender)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		errCh <- c.sendTask(ctx, sendCh, h)
	}()
	go func() {
		errCh <- c.receiveTask(ctx, h)
	}()

	first := <-errCh
	cancel()
	<-errCh

	if h.OnClose != nil {
		h.OnClose(c.Parts)
	}

	if errors.Is(first, io.EOF) {
		return nil
	}
	return first
}

func (c *Conn) sendTask(ctx context.Context, sendCh chan Message, h Handlers) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sendCh:
			if !ok {
				return nil
			}
			if h.OnSend != nil {
				var keep bool
				msg, keep = h.OnSend(msg, c.Parts)
				if !keep {
					continue
				}
			}
			if err := c.writeMessage(msg); err != nil {
				return err
			}
			if msg.Type == CloseMessage {
				return nil
			}
		}
	}
}

func (c *Conn) writeMessage(msg Message) error {
	var maskKey *[4]byte
	if !c.isServer {
		k := randomMaskKey()
		maskKey = &k
	}
	switch msg.Type {
	case TextMessage:
		if !utf8.Valid(msg.Data) {
			return ErrInvalidUTF8
		}
		return c.writer.WriteTextFrame(msg.Data, maskKey)
	case BinaryMessage:
		return c.writer.WriteBinaryFrame(msg.Data, maskKey)
	case PingMessage:
		return c.writer.WritePing(msg.Data, maskKey)
	case PongMessage:
		return c.writer.WritePong(msg.Data, maskKey)
	case CloseMessage:
		code, reason := CloseNormalClosure, ""
		if len(msg.Data) >= 2 {
			code = CloseCode(uint16(msg.Data[0])<<8 | uint16(msg.Data[1]))
			reason = string(msg.Data[2:])
		}
		return c.writer.WriteClose(code, reason, maskKey)
	default:
		return ErrInvalidOpcode
	}
}

func (c *Conn) receiveTask(ctx context.Context, h Handlers) error {
	var (
		assembling  bool
		assembled   []byte
		messageType MessageType
	)

	for {
		frame, err := c.reader.ReadFrame()
		if err != nil {
			return err
		}

		if frame.Masked && !c.isServer {
			return ErrMaskNotAllowed
		}
		if !frame.Masked && c.isServer {
			return ErrMaskRequired
		}

		if frame.IsControl() {
			done, err := c.handleControlFrame(frame)
			if err != nil {
				return err
			}
			if done {
				return io.EOF
			}
			continue
		}

		switch frame.Opcode {
		case OpcodeText, OpcodeBinary:
			if assembling {
				return ErrProtocolViolation
			}
			assembling = true
			assembled = append(assembled[:0], frame.Payload...)
			if frame.Opcode == OpcodeText {
				messageType = TextMessage
			} else {
				messageType = BinaryMessage
			}
		case OpcodeContinuation:
			if !assembling {
				return ErrProtocolViolation
			}
			assembled = append(assembled, frame.Payload...)
		default:
			return ErrInvalidOpcode
		}

		if int64(len(assembled)) > c.maxMessageSize {
			return ErrMessageTooLarge
		}

		if frame.Fin {
			if messageType == TextMessage && !utf8.Valid(assembled) {
				return ErrInvalidUTF8
			}
			msg := Message{Type: messageType, Data: append([]byte(nil), assembled...)}
			assembling = false
			assembled = assembled[:0]
			if h.OnReceive != nil {
				h.OnReceive(msg, c.Parts)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// handleControlFrame answers pings, records pongs, and on a close
// frame echoes a close response before signalling the loop to stop.
func (c *Conn) handleControlFrame(frame *Frame) (done bool, err error) {
	switch frame.Opcode {
	case OpcodePing:
		var maskKey *[4]byte
		if !c.isServer {
			k := randomMaskKey()
			maskKey = &k
		}
		return false, c.writer.WritePong(frame.Payload, maskKey)
	case OpcodePong:
		return false, nil
	case OpcodeClose:
		code := uint16(CloseNormalClosure)
		reason := ""
		if len(frame.Payload) >= 2 {
			code = uint16(frame.Payload[0])<<8 | uint16(frame.Payload[1])
			reason = string(frame.Payload[2:])
			if !utf8.Valid(frame.Payload[2:]) {
				return true, ErrInvalidUTF8
			}
			if !isValidCloseCode(code) {
				return true, ErrInvalidCloseCode
			}
		}
		c.Parts.Set("close_code", code)
		c.Parts.Set("close_reason", reason)

		var maskKey *[4]byte
		if !c.isServer {
			k := randomMaskKey()
			maskKey = &k
		}
		_ = c.writer.WriteClose(CloseCode(code), "", maskKey)
		return true, nil
	default:
		return true, ErrInvalidOpcode
	}
}

// Close closes the underlying connection directly, without running a
// close handshake; Serve's send task exiting on a CloseMessage is the
// graceful path.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
		c.reader.Close()
	})
	return c.closeErr
}
