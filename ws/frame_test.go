package ws

import (
	"bytes"
	"testing"
)

func TestFrameWriteReadUnmaskedText(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	if err := fw.WriteTextFrame([]byte("hello"), nil); err != nil {
		t.Fatal(err)
	}

	fr := NewFrameReader(&buf, nil)
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Opcode != OpcodeText || !frame.Fin || frame.Masked {
		t.Fatalf("got %+v", frame)
	}
	if string(frame.Payload) != "hello" {
		t.Fatalf("got payload %q", frame.Payload)
	}
}

func TestFrameWriteReadMaskedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	key := [4]byte{1, 2, 3, 4}
	payload := []byte("client frames must be masked on the wire")
	if err := fw.WriteBinaryFrame(append([]byte(nil), payload...), &key); err != nil {
		t.Fatal(err)
	}

	fr := NewFrameReader(&buf, nil)
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if !frame.Masked {
		t.Fatal("expected masked frame")
	}
	if string(frame.Payload) != string(payload) {
		t.Fatalf("got %q, want %q", frame.Payload, payload)
	}
}

func TestFrameExtendedLength16And64(t *testing.T) {
	for _, size := range []int{200, 70000} {
		var buf bytes.Buffer
		fw := NewFrameWriter(&buf)
		payload := bytes.Repeat([]byte{'x'}, size)
		if err := fw.WriteBinaryFrame(payload, nil); err != nil {
			t.Fatal(err)
		}
		fr := NewFrameReader(&buf, nil)
		frame, err := fr.ReadFrame()
		if err != nil {
			t.Fatal(err)
		}
		if len(frame.Payload) != size {
			t.Fatalf("size %d: got payload len %d", size, len(frame.Payload))
		}
	}
}

func TestWriteControlFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	err := fw.WriteControlFrame(OpcodePing, bytes.Repeat([]byte{'a'}, 126), nil)
	if err != ErrInvalidControlFrame {
		t.Fatalf("got %v, want ErrInvalidControlFrame", err)
	}
}

func TestReadFrameRejectsReservedBits(t *testing.T) {
	// FIN=1, RSV1=1, opcode=text, unmasked, length=0.
	raw := []byte{finalBit | rsv1Bit | byte(OpcodeText), 0x00}
	fr := NewFrameReader(bytes.NewReader(raw), nil)
	if _, err := fr.ReadFrame(); err != ErrReservedBitsSet {
		t.Fatalf("got %v, want ErrReservedBitsSet", err)
	}
}

func TestReadFrameRejectsFragmentedControl(t *testing.T) {
	// FIN=0, opcode=ping, unmasked, length=0.
	raw := []byte{byte(OpcodePing), 0x00}
	fr := NewFrameReader(bytes.NewReader(raw), nil)
	if _, err := fr.ReadFrame(); err != ErrFragmentedControl {
		t.Fatalf("got %v, want ErrFragmentedControl", err)
	}
}
