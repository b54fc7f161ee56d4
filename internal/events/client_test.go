package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// Test Helpers
// ============================================================================

// setupMockDaemon starts a websocket server that answers joinBoard with an
// ack followed by two snapshots (an old one last), addMember with a created
// member, and everything else with a NOT_FOUND error.
func setupMockDaemon(t *testing.T) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		send := func(data []byte, err error) {
			if err == nil {
				_ = conn.WriteMessage(websocket.TextMessage, data)
			}
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			env, err := Decode(data)
			if err != nil {
				return
			}

			switch env.Type {
			case EventJoinBoard:
				var ref BoardRef
				_ = DecodePayload(env, &ref)
				send(EncodeAck(env.RequestID, nil))
				send(EncodeBoardUpdated(&models.Board{ID: ref.BoardID, Name: "v2", Version: 2}))
				send(EncodeBoardUpdated(&models.Board{ID: ref.BoardID, Name: "v1", Version: 1}))
			case EventAddMember:
				send(EncodeAck(env.RequestID, &models.Member{ID: "m1", Name: "Ana"}))
			case EventLeaveBoard:
				send(EncodeBoardDeleted("b1"))
				send(EncodeAck(env.RequestID, nil))
			default:
				send(EncodeError(env.RequestID, &ProtocolError{Code: CodeNotFound, Entity: "card", Message: "card not found"}))
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTest(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, setupMockDaemon(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// ============================================================================
// Client Tests
// ============================================================================

func TestClient_JoinReceivesNewestSnapshotOnly(t *testing.T) {
	t.Parallel()
	c := dialTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Join(ctx, "b1"))

	select {
	case b := <-c.Updates():
		assert.Equal(t, "v2", b.Name)
	case <-ctx.Done():
		t.Fatal("no snapshot received")
	}

	// the stale v1 snapshot must never surface
	select {
	case b := <-c.Updates():
		t.Fatalf("unexpected stale snapshot %d", b.Version)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_RequestAckPayload(t *testing.T) {
	t.Parallel()
	c := dialTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	env, err := c.Request(ctx, EventAddMember, AddMemberPayload{BoardID: "b1", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, EventAck, env.Type)

	var m models.Member
	require.NoError(t, DecodePayload(env, &m))
	assert.Equal(t, "m1", m.ID)
}

func TestClient_RequestErrorReply(t *testing.T) {
	t.Parallel()
	c := dialTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Request(ctx, EventDeleteCard, CardRef{BoardID: "b1", ListID: "l1", CardID: "c1"})
	require.Error(t, err)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CodeNotFound, pe.Code)
	assert.Equal(t, "card", pe.Entity)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClient_BoardDeleted(t *testing.T) {
	t.Parallel()
	c := dialTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Request(ctx, EventLeaveBoard, BoardRef{BoardID: "b1"})
	require.NoError(t, err)

	select {
	case id := <-c.Deleted():
		assert.Equal(t, "b1", id)
	case <-ctx.Done():
		t.Fatal("no deletion notice received")
	}
}

func TestClient_RequestAfterClose(t *testing.T) {
	t.Parallel()
	c := dialTest(t)
	require.NoError(t, c.Close())

	<-c.Done()
	_, err := c.Request(context.Background(), EventJoinBoard, BoardRef{BoardID: "b1"})
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestDialWithRetry_GivesUp(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := DialWithRetry(ctx, "ws://127.0.0.1:1/ws", 2)
	require.Error(t, err)
	assert.NotNil(t, ClassifyDaemonError(err))
}

// ============================================================================
// Snapshot Queue Tests
// ============================================================================

// startQueue returns a connectionless client with its pump running
func startQueue(t *testing.T) *Client {
	t.Helper()
	c := newClient(nil)
	go c.pump()
	t.Cleanup(c.release)
	return c
}

func receiveBoard(t *testing.T, c *Client) *models.Board {
	t.Helper()
	select {
	case b := <-c.Updates():
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func TestClient_LaggingConsumerKeepsEveryBoard(t *testing.T) {
	t.Parallel()
	c := startQueue(t)

	c.offerBoard(&models.Board{ID: "A", Version: 5})
	for v := int64(1); v <= 8; v++ {
		c.offerBoard(&models.Board{ID: "B", Version: v})
	}
	c.offerBoard(&models.Board{ID: "C", Version: 1})

	latest := map[string]int64{}
	for range 3 {
		b := receiveBoard(t, c)
		latest[b.ID] = b.Version
	}
	assert.Equal(t, map[string]int64{"A": 5, "B": 8, "C": 1}, latest)

	select {
	case b := <-c.Updates():
		t.Fatalf("unexpected extra snapshot %s v%d", b.ID, b.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_QueuedSnapshotKeepsItsTurn(t *testing.T) {
	t.Parallel()
	c := newClient(nil)

	c.offerBoard(&models.Board{ID: "A", Version: 1})
	c.offerBoard(&models.Board{ID: "B", Version: 1})
	c.offerBoard(&models.Board{ID: "A", Version: 2})

	go c.pump()
	t.Cleanup(c.release)

	first := receiveBoard(t, c)
	assert.Equal(t, "A", first.ID)
	assert.Equal(t, int64(2), first.Version)
	assert.Equal(t, "B", receiveBoard(t, c).ID)
}

func TestClient_SnapshotsPrecedeDeletion(t *testing.T) {
	t.Parallel()
	c := startQueue(t)

	c.offerBoard(&models.Board{ID: "A", Version: 3})
	c.mu.Lock()
	c.queue = append(c.queue, notice{boardID: "A", deleted: true})
	c.mu.Unlock()
	c.signal()

	// the deletion cannot be taken while the snapshot is still queued
	select {
	case <-c.Deleted():
		t.Fatal("deletion delivered before the snapshot")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int64(3), receiveBoard(t, c).Version)

	select {
	case id := <-c.Deleted():
		assert.Equal(t, "A", id)
	case <-time.After(2 * time.Second):
		t.Fatal("no deletion notice received")
	}
}

func TestClient_DuplicateReplyDoesNotStallReader(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			env, err := Decode(data)
			if err != nil {
				return
			}
			if env.Type == EventJoinBoard {
				// a second reply for the same request, then a snapshot
				ack, _ := EncodeAck(env.RequestID, nil)
				_ = conn.WriteMessage(websocket.TextMessage, ack)
				_ = conn.WriteMessage(websocket.TextMessage, ack)
				_ = conn.WriteMessage(websocket.TextMessage, ack)
				snap, _ := EncodeBoardUpdated(&models.Board{ID: "b1", Version: 1})
				_ = conn.WriteMessage(websocket.TextMessage, snap)
			}
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Join(ctx, "b1"))
	assert.Equal(t, "b1", receiveBoard(t, c).ID)
}
