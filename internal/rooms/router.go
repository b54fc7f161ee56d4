// Package rooms tracks which connections are joined to which boards and fans
// board snapshots out to them.
package rooms

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// Subscriber is one connection as seen by the router.
type Subscriber interface {
	// Enqueue hands a frame to the connection's writer without blocking.
	// It returns false when the send queue is full or already closed.
	Enqueue(frame []byte) bool

	// Close disconnects the subscriber. The router calls it outside of its
	// own lock, after a failed Enqueue.
	Close()
}

// Router maps board ids to the set of joined subscribers. For every
// subscriber and board it remembers the last delivered version, so a
// snapshot older than one already delivered is superseded and dropped.
type Router struct {
	mu    sync.Mutex
	rooms map[string]map[Subscriber]int64

	delivered  atomic.Int64
	superseded atomic.Int64
	evicted    atomic.Int64

	logger *log.Logger
}

// Stats is a point-in-time view of router counters
type Stats struct {
	Rooms      int   `json:"rooms"`
	Members    int   `json:"members"`
	Delivered  int64 `json:"delivered"`
	Superseded int64 `json:"superseded"`
	Evicted    int64 `json:"evicted"`
}

// Compile-time verification that *Router implements events.BoardPublisher
var _ events.BoardPublisher = (*Router)(nil)

// NewRouter creates an empty router
func NewRouter(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Router{
		rooms:  make(map[string]map[Subscriber]int64),
		logger: logger,
	}
}

// Join adds sub to the board's room. Joining again resets the delivery
// watermark so the next snapshot is always delivered.
func (r *Router) Join(sub Subscriber, boardID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[boardID]
	if !ok {
		room = make(map[Subscriber]int64)
		r.rooms[boardID] = room
	}
	room[sub] = 0
}

// Leave removes sub from the board's room. Leaving a room that was never
// joined is a no-op.
func (r *Router) Leave(sub Subscriber, boardID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sub, boardID)
}

// LeaveAll removes sub from every room, used when a connection ends
func (r *Router) LeaveAll(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for boardID := range r.rooms {
		r.leaveLocked(sub, boardID)
	}
}

func (r *Router) leaveLocked(sub Subscriber, boardID string) {
	room, ok := r.rooms[boardID]
	if !ok {
		return
	}
	delete(room, sub)
	r.pruneLocked(boardID)
}

func (r *Router) pruneLocked(boardID string) {
	if room, ok := r.rooms[boardID]; ok && len(room) == 0 {
		delete(r.rooms, boardID)
	}
}

// Joined reports whether sub is in the board's room
func (r *Router) Joined(sub Subscriber, boardID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[boardID][sub]
	return ok
}

// Members returns the number of subscribers joined to a board
func (r *Router) Members(boardID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[boardID])
}

// Broadcast delivers a snapshot frame to every subscriber of the board,
// including the one whose request produced it.
func (r *Router) Broadcast(boardID string, version int64, frame []byte) {
	r.mu.Lock()
	room := r.rooms[boardID]
	var slow []Subscriber
	for sub, last := range room {
		if !r.offerLocked(room, sub, last, version, frame) {
			slow = append(slow, sub)
		}
	}
	r.pruneLocked(boardID)
	r.mu.Unlock()

	r.evict(boardID, slow)
}

// Deliver sends a snapshot frame to one joined subscriber, subject to the
// same version ordering as Broadcast. Subscribers not in the room are
// ignored.
func (r *Router) Deliver(sub Subscriber, boardID string, version int64, frame []byte) {
	r.mu.Lock()
	room := r.rooms[boardID]
	last, ok := room[sub]
	if !ok {
		r.mu.Unlock()
		return
	}
	delivered := r.offerLocked(room, sub, last, version, frame)
	r.pruneLocked(boardID)
	r.mu.Unlock()

	if !delivered {
		r.evict(boardID, []Subscriber{sub})
	}
}

// offerLocked enqueues frame if version is newer than the last delivery.
// It returns false only when the subscriber could not keep up.
func (r *Router) offerLocked(room map[Subscriber]int64, sub Subscriber, last, version int64, frame []byte) bool {
	if version <= last {
		r.superseded.Add(1)
		return true
	}
	if !sub.Enqueue(frame) {
		delete(room, sub)
		return false
	}
	room[sub] = version
	r.delivered.Add(1)
	return true
}

// CloseRoom sends a final frame to every member and dissolves the room
func (r *Router) CloseRoom(boardID string, frame []byte) {
	r.mu.Lock()
	room := r.rooms[boardID]
	delete(r.rooms, boardID)
	var slow []Subscriber
	for sub := range room {
		if !sub.Enqueue(frame) {
			slow = append(slow, sub)
		}
	}
	r.mu.Unlock()

	r.evict(boardID, slow)
}

func (r *Router) evict(boardID string, subs []Subscriber) {
	for _, sub := range subs {
		r.evicted.Add(1)
		r.logger.WithField("board_id", boardID).Warn("subscriber send queue full, disconnecting")
		sub.Close()
	}
}

// PublishBoard encodes and broadcasts a committed snapshot
func (r *Router) PublishBoard(board *models.Board) {
	if r.Members(board.ID) == 0 {
		return
	}
	frame, err := events.EncodeBoardUpdated(board)
	if err != nil {
		r.logger.WithError(err).WithField("board_id", board.ID).Error("failed to encode snapshot")
		return
	}
	r.Broadcast(board.ID, board.Version, frame)
}

// PublishBoardDeleted notifies every member that the board is gone and
// dissolves its room
func (r *Router) PublishBoardDeleted(boardID string) {
	frame, err := events.EncodeBoardDeleted(boardID)
	if err != nil {
		r.logger.WithError(err).WithField("board_id", boardID).Error("failed to encode deletion notice")
		return
	}
	r.CloseRoom(boardID, frame)
}

// Stats returns current router counters
func (r *Router) Stats() Stats {
	r.mu.Lock()
	rooms := len(r.rooms)
	members := 0
	for _, room := range r.rooms {
		members += len(room)
	}
	r.mu.Unlock()

	return Stats{
		Rooms:      rooms,
		Members:    members,
		Delivered:  r.delivered.Load(),
		Superseded: r.superseded.Load(),
		Evicted:    r.evicted.Load(),
	}
}
