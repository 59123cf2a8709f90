package transport_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/teleroom/teleroom/pkg/transport"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func testConfig() transport.ConnectionConfig {
	return transport.ConnectionConfig{
		PingInterval: time.Minute,
		ReadTimeout:  time.Minute,
	}
}

// socketPair dials an in-process server and returns the server side of the
// websocket, the one our Connection wraps in production.
func socketPair(t *testing.T) *websocket.Conn {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- c
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, _, err := websocket.Dial(ctx, "ws://"+strings.TrimPrefix(srv.URL, "http://"), nil)
	if err != nil {
		t.Fatalf("Failed to dial test server: %v", err)
	}
	t.Cleanup(func() { client.Close(websocket.StatusNormalClosure, "") })

	select {
	case c := <-serverConns:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("Server never accepted the websocket")
		return nil
	}
}

func waitForGroup(t *testing.T, wg *sync.WaitGroup, msg string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

// A session evicted by a quick reconnect can be closed from another
// goroutine before its own handler reaches Run. That ordering must neither
// unbalance the wait group nor leave the connection half-alive.
func TestCloseBeforeRun(t *testing.T) {
	wsConn := socketPair(t)
	var wg sync.WaitGroup
	conn := transport.NewConnection(context.Background(), &wg, wsConn, testConfig(), nil, nil, newTestLogger())

	conn.Close(errors.New("replaced by a newer session"))

	waitForGroup(t, &wg, "WaitGroup never drained after Close before Run")
	select {
	case <-conn.Done():
	default:
		t.Fatal("Done not closed after Close")
	}

	// The late Run must be a harmless no-op: its pumps exit against the
	// cancelled context without touching the wait group again.
	conn.Run()
	waitForGroup(t, &wg, "Late Run unbalanced the WaitGroup")
}

func TestRunThenCloseDrainsWaitGroup(t *testing.T) {
	wsConn := socketPair(t)
	var wg sync.WaitGroup

	closed := make(chan error, 1)
	conn := transport.NewConnection(context.Background(), &wg, wsConn, testConfig(), nil, func(_ uuid.UUID, err error) {
		closed <- err
	}, newTestLogger())

	conn.Run()
	cause := errors.New("peer went away")
	conn.Close(cause)

	waitForGroup(t, &wg, "WaitGroup never drained after Close")
	select {
	case err := <-closed:
		if !errors.Is(err, cause) {
			t.Errorf("Expected close cause to reach the handler, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose handler never ran")
	}

	if conn.TrySend([]byte("late")) {
		t.Error("TrySend succeeded on a closed connection")
	}
}
