package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// ServeTestDaemon serves the daemon's handler on a loopback test server and
// returns its base URL. Cleanup is automatic via t.Cleanup().
func ServeTestDaemon(t *testing.T, handler http.Handler) string {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts.URL
}

// WebsocketURL turns an http base URL into the daemon's websocket endpoint
func WebsocketURL(baseURL string) string {
	return "ws" + strings.TrimPrefix(strings.TrimSuffix(baseURL, "/"), "http") + "/ws"
}

// SetupTestClient dials the websocket endpoint with the protocol client.
// Cleanup is automatic via t.Cleanup().
func SetupTestClient(t *testing.T, baseURL string) *events.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := events.Dial(ctx, WebsocketURL(baseURL))
	if err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})
	return client
}

// ConnectRawClient opens a bare websocket for frame-level testing.
// Cleanup is automatic via t.Cleanup().
func ConnectRawClient(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(WebsocketURL(baseURL), nil)
	if err != nil {
		t.Fatalf("Failed to dial daemon: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// WaitForCount polls count until it reports expected or the timeout passes
func WaitForCount(t *testing.T, count func() int, expected int, timeout time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if count() == expected {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return count() == expected
}

// WaitForBoard waits for a snapshot on the client's update channel that
// satisfies match, failing the test on timeout. Snapshots that don't match
// are skipped.
func WaitForBoard(t *testing.T, c *events.Client, timeout time.Duration, match func(*models.Board) bool) *models.Board {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case b := <-c.Updates():
			if match(b) {
				return b
			}
		case <-c.Done():
			t.Fatalf("Client closed while waiting for board: %v", c.Err())
			return nil
		case <-timer.C:
			t.Fatalf("Timeout waiting for board after %v", timeout)
			return nil
		}
	}
}
