package events

import (
	"context"

	"github.com/thenoetrevino/tablero/internal/models"
)

// BoardPublisher receives every committed board snapshot. Mutation handlers
// call it after a successful commit; the rooms router implements it by
// fanning the snapshot out to every connection joined to the board.
type BoardPublisher interface {
	// PublishBoard announces a committed snapshot. Implementations must not
	// block on slow receivers.
	PublishBoard(board *models.Board)

	// PublishBoardDeleted announces that a board no longer exists
	PublishBoardDeleted(boardID string)
}

// BoardWatcher is the client side of the protocol: it issues requests and
// streams the snapshots of joined boards.
type BoardWatcher interface {
	Request(ctx context.Context, t EventType, payload any) (*Envelope, error)
	Join(ctx context.Context, boardID string) error
	Updates() <-chan *models.Board
	Deleted() <-chan string
	Done() <-chan struct{}
	Close() error
}

// Compile-time verification that *Client implements BoardWatcher
var _ BoardWatcher = (*Client)(nil)
