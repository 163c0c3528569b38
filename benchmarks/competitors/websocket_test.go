package competitors

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/yourusername/pulsar/ws"
)

var upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}

// BenchmarkPulsarFrameRoundTrip measures encode+decode cost for a
// single text frame over an in-memory pipe, the pulsar-side
// counterpart to shockwave/benchmarks/competitors's
// BenchmarkGorillaWebSocketMessageParsing frame-handling benchmark.
func BenchmarkPulsarFrameRoundTrip(b *testing.B) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	writer := ws.NewFrameWriter(clientConn)
	reader := ws.NewFrameReader(serverConn, nil)
	defer reader.Close()

	message := []byte("Hello, WebSocket!")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < b.N; i++ {
			if _, err := reader.ReadFrame(); err != nil {
				b.Error(err)
				return
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := writer.WriteTextFrame(message, nil); err != nil {
			b.Fatal(err)
		}
	}
	<-done
}

// BenchmarkGorillaWebSocketEcho is the gorilla/websocket baseline for
// the same single-message echo round trip, grounded on
// shockwave/benchmarks/competitors/websocket_test.go's
// BenchmarkGorillaWebSocketEcho.
func BenchmarkGorillaWebSocketEcho(b *testing.B) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			messageType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, msg); err != nil {
				return
			}
		}
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	wsURL := "ws" + server.URL[4:]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer conn.Close()

	message := []byte("Hello, WebSocket!")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			b.Fatal(err)
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			b.Fatal(err)
		}
	}
}
