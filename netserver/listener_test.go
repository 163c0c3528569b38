package netserver

import (
	"context"
	"net"
	"testing"
	"time"
)

func dialTCP(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

func mustListener(t *testing.T) Listener {
	t.Helper()
	l, err := NewTCPListener("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestListenerSetAcceptReturnsFirstReadyConnection(t *testing.T) {
	a := mustListener(t)
	b := mustListener(t)
	ls := NewListenerSet(a, b)
	defer ls.Close()

	tcpA := a.Addr().String()
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := dialTCP(tcpA)
		if err != nil {
			t.Error(err)
			return
		}
		conn.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, _, err := ls.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	conn.Close()
	<-done
}

func TestListenerSetReportsClosedOnceAllMembersClose(t *testing.T) {
	a := mustListener(t)
	b := mustListener(t)
	ls := NewListenerSet(a, b)

	a.Close()
	b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, err := ls.Accept(ctx)
	if err != ErrListenerSetClosed {
		t.Fatalf("got %v, want ErrListenerSetClosed", err)
	}
}

func TestListenerSetAcceptRespectsContext(t *testing.T) {
	a := mustListener(t)
	ls := NewListenerSet(a)
	defer ls.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := ls.Accept(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("got %v, want context.DeadlineExceeded", err)
	}
}
