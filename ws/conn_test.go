package ws

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestConnServeEchoesReceivedTextAndClosesOnClientClose(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	server := NewConn(serverSide, true, "")

	received := make(chan Message, 1)
	closed := make(chan struct{})

	h := Handlers{
		OnConnect: func(parts *Parts, sender *Sender) {
			parts.Set("sender", sender)
		},
		OnReceive: func(msg Message, parts *Parts) {
			received <- msg
			sender, _ := parts.Get("sender")
			_ = sender.(*Sender).Send(context.Background(), Message{Type: TextMessage, Data: []byte("echo: " + string(msg.Data))})
		},
		OnClose: func(parts *Parts) {
			close(closed)
		},
	}

	done := make(chan error, 1)
	go func() { done <- server.Serve(context.Background(), 4, h) }()

	clientKey := [4]byte{9, 8, 7, 6}
	clientWriter := NewFrameWriter(clientSide)
	if err := clientWriter.WriteTextFrame([]byte("hi"), &clientKey); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-received:
		if string(msg.Data) != "hi" {
			t.Fatalf("got %q", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive message")
	}

	clientReader := NewFrameReader(clientSide, nil)
	frame, err := clientReader.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Opcode != OpcodeText || string(frame.Payload) != "echo: hi" {
		t.Fatalf("got %+v", frame)
	}

	if err := clientWriter.WriteClose(CloseNormalClosure, "", &clientKey); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Serve to return")
	}

	select {
	case <-closed:
	default:
		t.Fatal("OnClose was not called")
	}
}

func TestConnRejectsUnmaskedClientFrame(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	server := NewConn(serverSide, true, "")
	done := make(chan error, 1)
	go func() { done <- server.Serve(context.Background(), 4, Handlers{}) }()

	clientWriter := NewFrameWriter(clientSide)
	if err := clientWriter.WriteTextFrame([]byte("no mask"), nil); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != ErrMaskRequired {
			t.Fatalf("got %v, want ErrMaskRequired", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}
