package ws

import (
	"encoding/binary"
	"io"
)

// FrameReader decodes frames from a byte stream. Headers are decoded
// from fixed-size local arrays; the payload goes into one growable
// buffer reused across calls.
type FrameReader struct {
	r          io.Reader
	headerBuf  *[]byte
	payloadBuf []byte
	pool       *BufferPool
}

// NewFrameReader wraps r. pool (or the package default if pool is nil)
// is kept on the reader; ReadFrame does not draw buffers from it.
func NewFrameReader(r io.Reader, pool *BufferPool) *FrameReader {
	if pool == nil {
		pool = DefaultBufferPool
	}
	return &FrameReader{r: r, pool: pool}
}

// Close returns the reader's header buffer to the shared header pool if
// it holds one; ReadFrame never takes one, so for a reader used only
// through ReadFrame this does nothing. It does not close the
// underlying io.Reader.
func (fr *FrameReader) Close() {
	if fr.headerBuf != nil {
		putHeaderBuffer(fr.headerBuf)
		fr.headerBuf = nil
	}
}

func (fr *FrameReader) readFull(buf []byte) error {
	_, err := io.ReadFull(fr.r, buf)
	return err
}

// ReadFrame reads and validates the next frame, masking key and
// payload included.
func (fr *FrameReader) ReadFrame() (*Frame, error) {
	var head [2]byte
	if err := fr.readFull(head[:]); err != nil {
		return nil, err
	}

	f := &Frame{
		Fin:    head[0]&finalBit != 0,
		RSV1:   head[0]&rsv1Bit != 0,
		RSV2:   head[0]&rsv2Bit != 0,
		RSV3:   head[0]&rsv3Bit != 0,
		Opcode: Opcode(head[0] & opcodeMask),
		Masked: head[1]&maskBit != 0,
	}

	if f.RSV1 || f.RSV2 || f.RSV3 {
		return nil, ErrReservedBitsSet
	}

	switch f.Opcode {
	case OpcodeContinuation, OpcodeText, OpcodeBinary, OpcodeClose, OpcodePing, OpcodePong:
	default:
		return nil, ErrInvalidOpcode
	}

	length := uint64(head[1] & lengthMask)
	switch length {
	case 126:
		var ext [2]byte
		if err := fr.readFull(ext[:]); err != nil {
			return nil, err
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if err := fr.readFull(ext[:]); err != nil {
			return nil, err
		}
		length = binary.BigEndian.Uint64(ext[:])
		if length&(1<<63) != 0 {
			return nil, ErrFrameTooLarge
		}
	}
	f.Length = length

	if f.IsControl() {
		if !f.Fin {
			return nil, ErrFragmentedControl
		}
		if length > MaxControlFramePayload {
			return nil, ErrInvalidControlFrame
		}
	}

	if f.Masked {
		if err := fr.readFull(f.MaskKey[:]); err != nil {
			return nil, err
		}
	}

	if cap(fr.payloadBuf) < int(length) {
		fr.payloadBuf = make([]byte, length)
	}
	payload := fr.payloadBuf[:length]
	if length > 0 {
		if err := fr.readFull(payload); err != nil {
			return nil, err
		}
	}
	if f.Masked {
		maskBytes(f.MaskKey, 0, payload)
	}
	f.Payload = payload
	return f, nil
}

// FrameWriter encodes frames onto a byte stream.
type FrameWriter struct {
	w         io.Writer
	headerBuf [MaxFrameHeaderSize]byte
}

// NewFrameWriter wraps w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes a single frame. If maskKey is non-nil, payload is
// masked in place using it before being written; the caller's slice
// is mutated.
func (fw *FrameWriter) WriteFrame(opcode Opcode, fin bool, payload []byte, maskKey *[4]byte) error {
	n := 0
	b0 := byte(opcode)
	if fin {
		b0 |= finalBit
	}
	fw.headerBuf[0] = b0
	n++

	length := len(payload)
	var b1 byte
	if maskKey != nil {
		b1 |= maskBit
	}
	switch {
	case length <= 125:
		b1 |= byte(length)
		fw.headerBuf[n] = b1
		n++
	case length <= 65535:
		b1 |= 126
		fw.headerBuf[n] = b1
		n++
		binary.BigEndian.PutUint16(fw.headerBuf[n:], uint16(length))
		n += 2
	default:
		b1 |= 127
		fw.headerBuf[n] = b1
		n++
		binary.BigEndian.PutUint64(fw.headerBuf[n:], uint64(length))
		n += 8
	}

	if maskKey != nil {
		copy(fw.headerBuf[n:], maskKey[:])
		n += 4
		maskBytes(*maskKey, 0, payload)
	}

	if _, err := fw.w.Write(fw.headerBuf[:n]); err != nil {
		return err
	}
	if length > 0 {
		if _, err := fw.w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// WriteControlFrame writes a single, unfragmented control frame,
// rejecting payloads above MaxControlFramePayload.
func (fw *FrameWriter) WriteControlFrame(opcode Opcode, payload []byte, maskKey *[4]byte) error {
	if len(payload) > MaxControlFramePayload {
		return ErrInvalidControlFrame
	}
	return fw.WriteFrame(opcode, true, payload, maskKey)
}

func (fw *FrameWriter) WriteTextFrame(payload []byte, maskKey *[4]byte) error {
	return fw.WriteFrame(OpcodeText, true, payload, maskKey)
}

func (fw *FrameWriter) WriteBinaryFrame(payload []byte, maskKey *[4]byte) error {
	return fw.WriteFrame(OpcodeBinary, true, payload, maskKey)
}

func (fw *FrameWriter) WritePing(payload []byte, maskKey *[4]byte) error {
	return fw.WriteControlFrame(OpcodePing, payload, maskKey)
}

func (fw *FrameWriter) WritePong(payload []byte, maskKey *[4]byte) error {
	return fw.WriteControlFrame(OpcodePong, payload, maskKey)
}

func (fw *FrameWriter) WriteClose(code CloseCode, reason string, maskKey *[4]byte) error {
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, uint16(code))
	copy(payload[2:], reason)
	return fw.WriteControlFrame(OpcodeClose, payload, maskKey)
}
