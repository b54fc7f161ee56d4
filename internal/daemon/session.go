package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// session is one websocket connection. Inbound envelopes are handled
// sequentially on the reader goroutine; every outbound frame goes through
// the buffered send queue and is written by the writer goroutine.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	remote string

	closeOnce sync.Once
	server    *Server
	log       *log.Entry
}

func newSession(s *Server, id string, conn *websocket.Conn) *session {
	return &session{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, s.cfg.ClientBuffer),
		done:   make(chan struct{}),
		remote: conn.RemoteAddr().String(),
		server: s,
		log: s.logger.WithFields(log.Fields{
			"session": id,
			"remote":  conn.RemoteAddr().String(),
		}),
	}
}

// Enqueue implements rooms.Subscriber. It never blocks.
func (c *session) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close implements rooms.Subscriber. It is safe to call more than once and
// from any goroutine; the reader notices the closed socket and cleans up.
func (c *session) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("error closing connection")
		}
	})
}

// reply enqueues a private frame, disconnecting the session if it cannot
// keep up
func (c *session) reply(frame []byte) {
	if !c.Enqueue(frame) {
		c.log.Warn("send queue full, disconnecting")
		c.Close()
	}
}

// readLoop reads envelopes until the connection fails or goes stale
func (c *session) readLoop(ctx context.Context) {
	defer c.Close()

	cfg := c.server.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.WithError(err).Debug("connection closed unexpectedly")
			}
			return
		}
		// any traffic proves the peer is alive
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))

		if msgType != websocket.TextMessage {
			continue
		}
		c.server.handleFrame(ctx, c, data)
	}
}

// writeLoop drains the send queue and pings the peer
func (c *session) writeLoop() {
	cfg := c.server.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}
			c.server.metrics.IncFramesSent()

		case <-ticker.C:
			deadline := time.Now().Add(cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
