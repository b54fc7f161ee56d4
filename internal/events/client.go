package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ErrClientClosed is returned by requests issued after the connection ended
var ErrClientClosed = errors.New("client closed")

const (
	clientWriteTimeout = 10 * time.Second
	clientReadTimeout  = 90 * time.Second
)

// Client is a websocket connection to a tablero daemon. It correlates
// acknowledgements with requests and streams board snapshots of the rooms
// it joined, newest version only.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu          sync.Mutex
	pending     map[string]chan *Envelope
	lastVersion map[string]int64
	nextID      int64
	err         error

	// notices waiting for the consumer, in arrival order. A board has at
	// most one queued snapshot; newer ones overwrite it in latest.
	queue  []notice
	latest map[string]*models.Board
	wake   chan struct{}

	updates chan *models.Board
	deleted chan string
	done    chan struct{}
	once    sync.Once

	released    chan struct{}
	releaseOnce sync.Once
}

// notice is a queued snapshot or deletion for one board
type notice struct {
	boardID string
	deleted bool
}

// Dial connects to the daemon websocket endpoint, e.g. ws://localhost:7420/ws
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial daemon: %w", err)
	}

	c := newClient(conn)

	// the daemon pings; answering resets our read deadline too
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(clientReadTimeout))
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(clientWriteTimeout))
	})

	go c.readLoop()
	go c.pump()
	return c, nil
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:        conn,
		pending:     make(map[string]chan *Envelope),
		lastVersion: make(map[string]int64),
		latest:      make(map[string]*models.Board),
		wake:        make(chan struct{}, 1),
		updates:     make(chan *models.Board),
		deleted:     make(chan string),
		done:        make(chan struct{}),
		released:    make(chan struct{}),
	}
}

// Request sends one event and waits for its ack or error. An error reply is
// returned as a *ProtocolError.
func (c *Client) Request(ctx context.Context, t EventType, payload any) (*Envelope, error) {
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.nextID++
	requestID := strconv.FormatInt(c.nextID, 10)
	reply := make(chan *Envelope, 1)
	c.pending[requestID] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	data, err := Encode(t, requestID, payload)
	if err != nil {
		return nil, err
	}
	if err := c.write(data); err != nil {
		return nil, err
	}

	select {
	case env := <-reply:
		if env.Type == EventError {
			if env.Error == nil {
				return nil, &ProtocolError{Code: CodeInternal, Message: "error reply without body"}
			}
			return nil, env.Error
		}
		return env, nil
	case <-c.done:
		return nil, c.closeErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Join subscribes to a board. The current snapshot arrives on Updates.
func (c *Client) Join(ctx context.Context, boardID string) error {
	_, err := c.Request(ctx, EventJoinBoard, BoardRef{BoardID: boardID})
	return err
}

// Updates streams snapshots of joined boards. When the consumer falls
// behind, a board's queued snapshot is replaced by its newer one; other
// boards keep theirs.
func (c *Client) Updates() <-chan *models.Board {
	return c.updates
}

// Deleted streams ids of joined boards that were deleted. Snapshots that
// arrived before the deletion are handed out on Updates first.
func (c *Client) Deleted() <-chan string {
	return c.deleted
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended, if it did
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a close frame and tears down the connection. Undelivered
// notices are discarded.
func (c *Client) Close() error {
	c.release()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	c.shutdown(ErrClientClosed)
	return c.conn.Close()
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(clientWriteTimeout)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(clientReadTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.shutdown(ErrClientClosed)
			} else {
				c.shutdown(fmt.Errorf("connection lost: %w", err))
			}
			return
		}

		env, err := Decode(data)
		if err != nil {
			log.WithError(err).Warn("dropping undecodable message from daemon")
			continue
		}

		switch env.Type {
		case EventAck, EventError:
			c.mu.Lock()
			reply, ok := c.pending[env.RequestID]
			c.mu.Unlock()
			if ok {
				select {
				case reply <- env:
				default:
					log.WithField("request_id", env.RequestID).Warn("dropping duplicate reply from daemon")
				}
			}

		case EventBoardUpdated:
			var board models.Board
			if err := DecodePayload(env, &board); err != nil {
				log.WithError(err).Warn("dropping undecodable snapshot")
				continue
			}
			c.offerBoard(&board)

		case EventBoardDeleted:
			var p BoardDeletedPayload
			if err := DecodePayload(env, &p); err != nil {
				continue
			}
			c.mu.Lock()
			delete(c.lastVersion, p.BoardID)
			c.queue = append(c.queue, notice{boardID: p.BoardID, deleted: true})
			c.mu.Unlock()
			c.signal()
		}
	}
}

// offerBoard queues a snapshot unless a newer one for the same board was
// already seen. A snapshot still waiting for the consumer is overwritten in
// place, so it keeps its turn.
func (c *Client) offerBoard(board *models.Board) {
	c.mu.Lock()
	if board.Version <= c.lastVersion[board.ID] {
		c.mu.Unlock()
		return
	}
	c.lastVersion[board.ID] = board.Version
	if _, queued := c.latest[board.ID]; !queued {
		c.queue = append(c.queue, notice{boardID: board.ID})
	}
	c.latest[board.ID] = board
	c.mu.Unlock()
	c.signal()
}

func (c *Client) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest queued notice
func (c *Client) next() (notice, *models.Board, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return notice{}, nil, false
	}
	n := c.queue[0]
	c.queue = c.queue[1:]
	if n.deleted {
		return n, nil, true
	}
	b := c.latest[n.boardID]
	delete(c.latest, n.boardID)
	return n, b, true
}

// pump hands queued notices to the consumer in order. After the connection
// ends it keeps going until the queue is empty; Close stops it at once.
func (c *Client) pump() {
	for {
		n, board, ok := c.next()
		if !ok {
			select {
			case <-c.wake:
				continue
			case <-c.released:
				return
			case <-c.done:
				// readLoop has stopped, so nothing more can be queued
				if !c.queued() {
					return
				}
				continue
			}
		}

		if n.deleted {
			select {
			case c.deleted <- n.boardID:
			case <-c.released:
				return
			}
			continue
		}
		select {
		case c.updates <- board:
		case <-c.released:
			return
		}
	}
}

func (c *Client) queued() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue) > 0
}

func (c *Client) release() {
	c.releaseOnce.Do(func() { close(c.released) })
}

func (c *Client) shutdown(reason error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = reason
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Client) closeErr() error {
	if err := c.Err(); err != nil {
		return err
	}
	return ErrClientClosed
}

// DialWithRetry attempts to connect up to maxRetries times with exponential
// backoff (500ms, 1s, 2s, ...). Returns the error from the final attempt if
// all retries fail.
func DialWithRetry(ctx context.Context, url string, maxRetries int) (*Client, error) {
	var lastErr error
	delay := 500 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		c, err := Dial(ctx, url)
		if err == nil {
			if attempt > 0 {
				log.WithField("attempt", attempt+1).Debug("connected after retry")
			}
			return c, nil
		}
		lastErr = err

		// Don't sleep after the last attempt
		if attempt < maxRetries-1 {
			log.WithFields(log.Fields{
				"attempt":     attempt + 1,
				"max_retries": maxRetries,
				"retry_delay": delay,
			}).WithError(err).Debug("dial failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}

	return nil, lastErr
}
